package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/embedding"
	"github.com/mwhitby/agent-store/internal/model"
)

const memoryColumns = `m.id, m.type, m.entity_id, m.agent_id, m.room_id, m.world_id, m.content, m.metadata, m.is_unique, m.created_at`

// EnsureEmbeddingDimension reconfigures the vector width expected on
// subsequent writes. Existing stored vectors are untouched; searches
// only ever compare rows whose recorded width matches the query.
func (a *Adapter) EnsureEmbeddingDimension(dims int) error {
	if dims <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", dims)
	}
	a.dims.Store(int32(dims))
	return nil
}

// EmbeddingDimension returns the currently configured vector width.
func (a *Adapter) EmbeddingDimension() int {
	return int(a.dims.Load())
}

// CreateMemory stores a memory and, when present, its embedding in one
// transaction: a reader never sees one without the other. The embedding
// must match the configured dimension.
func (a *Adapter) CreateMemory(ctx context.Context, memory *model.Memory, tableName string) (uuid.UUID, error) {
	if tableName == "" {
		tableName = model.TableMemories
	}
	if memory.ID == uuid.Nil {
		memory.ID = uuid.New()
	}
	if memory.CreatedAt == 0 {
		memory.CreatedAt = now()
	}
	if memory.Embedding != nil && len(memory.Embedding) != a.EmbeddingDimension() {
		return uuid.Nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d",
			len(memory.Embedding), a.EmbeddingDimension())
	}

	content, err := encodeJSON(memory.Content)
	if err != nil {
		return uuid.Nil, err
	}
	metadata, err := encodeJSON(memory.Metadata)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := a.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create memory: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, a.db.d.bind(
		`INSERT INTO memories (id, type, entity_id, agent_id, room_id, world_id, content, metadata, is_unique, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		memory.ID.String(), tableName, nullID(memory.EntityID), a.agentID.String(),
		nullID(memory.RoomID), nullID(memory.WorldID), content, metadata,
		memory.Unique, memory.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert memory: %w", err)
	}

	if memory.Embedding != nil {
		vec, err := a.db.d.encodeVector(memory.Embedding)
		if err != nil {
			return uuid.Nil, err
		}
		_, err = tx.ExecContext(ctx, a.db.d.bind(
			`INSERT INTO embeddings (memory_id, dims, vector) VALUES (?, ?, ?)`),
			memory.ID.String(), len(memory.Embedding), vec)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("create memory: %w", err)
	}
	return memory.ID, nil
}

// GetMemoryByID returns a memory with its embedding, nil when absent.
func (a *Adapter) GetMemoryByID(ctx context.Context, id uuid.UUID) (*model.Memory, error) {
	row := a.db.queryRow(ctx,
		`SELECT `+memoryColumns+`, e.vector
		 FROM memories m LEFT JOIN embeddings e ON e.memory_id = m.id
		 WHERE m.id = ? AND m.agent_id = ?`,
		id.String(), a.agentID.String())
	m, err := a.scanMemory(row, true, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return m, nil
}

// GetMemoriesByIDs returns the memories matching ids, skipping
// absentees.
func (a *Adapter) GetMemoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := []any{a.agentID.String()}
	for _, id := range ids {
		args = append(args, id.String())
	}
	rows, err := a.db.query(ctx,
		`SELECT `+memoryColumns+`, e.vector
		 FROM memories m LEFT JOIN embeddings e ON e.memory_id = m.id
		 WHERE m.agent_id = ? AND m.id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get memories: %w", err)
	}
	defer rows.Close()
	return a.collectMemories(rows, true, false)
}

// GetMemories lists memories in a logical partition, newest first.
func (a *Adapter) GetMemories(ctx context.Context, p GetMemoriesParams) ([]model.Memory, error) {
	if p.TableName == "" {
		p.TableName = model.TableMemories
	}
	where := []string{"m.agent_id = ?", "m.type = ?"}
	args := []any{a.agentID.String(), p.TableName}
	if p.RoomID != uuid.Nil {
		where = append(where, "m.room_id = ?")
		args = append(args, p.RoomID.String())
	}
	if p.Unique {
		where = append(where, "m.is_unique = ?")
		args = append(args, true)
	}

	query := `SELECT ` + memoryColumns + `, e.vector
		 FROM memories m LEFT JOIN embeddings e ON e.memory_id = m.id
		 WHERE ` + strings.Join(where, " AND ") + ` ORDER BY m.created_at DESC`
	if p.Count > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Count)
	}

	rows, err := a.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get memories: %w", err)
	}
	defer rows.Close()
	return a.collectMemories(rows, true, false)
}

// CountMemories counts a room's memories in a logical partition.
func (a *Adapter) CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, tableName string) (int, error) {
	if tableName == "" {
		tableName = model.TableMemories
	}
	where := []string{"agent_id = ?", "type = ?", "room_id = ?"}
	args := []any{a.agentID.String(), tableName, roomID.String()}
	if unique {
		where = append(where, "is_unique = ?")
		args = append(args, true)
	}
	var count int
	err := a.db.queryRow(ctx,
		`SELECT COUNT(*) FROM memories WHERE `+strings.Join(where, " AND "), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count memories: %w", err)
	}
	return count, nil
}

// UpdateMemory replaces content and metadata wholesale; callers must
// supply the complete objects, unchanged sub-fields included. A new
// embedding, when supplied, replaces the stored vector in the same
// transaction. Returns false when the memory does not exist.
func (a *Adapter) UpdateMemory(ctx context.Context, memory *model.Memory) (bool, error) {
	if memory.Embedding != nil && len(memory.Embedding) != a.EmbeddingDimension() {
		return false, fmt.Errorf("embedding dimension mismatch: got %d, want %d",
			len(memory.Embedding), a.EmbeddingDimension())
	}
	content, err := encodeJSON(memory.Content)
	if err != nil {
		return false, err
	}
	metadata, err := encodeJSON(memory.Metadata)
	if err != nil {
		return false, err
	}

	tx, err := a.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("update memory: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, a.db.d.bind(
		`UPDATE memories SET content = ?, metadata = ?, is_unique = ? WHERE id = ? AND agent_id = ?`),
		content, metadata, memory.Unique, memory.ID.String(), a.agentID.String())
	if err != nil {
		return false, fmt.Errorf("update memory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update memory: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if memory.Embedding != nil {
		vec, err := a.db.d.encodeVector(memory.Embedding)
		if err != nil {
			return false, err
		}
		_, err = tx.ExecContext(ctx, a.db.d.bind(
			`INSERT INTO embeddings (memory_id, dims, vector) VALUES (?, ?, ?)
			 ON CONFLICT (memory_id) DO UPDATE SET dims = excluded.dims, vector = excluded.vector`),
			memory.ID.String(), len(memory.Embedding), vec)
		if err != nil {
			return false, fmt.Errorf("update embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("update memory: %w", err)
	}
	return true, nil
}

// DeleteMemory removes a memory. Deleting a document also removes every
// fragment referencing it, in the same transaction, so a failure leaves
// no orphans. Deleting a fragment or a plain memory cascades nowhere.
func (a *Adapter) DeleteMemory(ctx context.Context, id uuid.UUID) error {
	tx, err := a.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	defer tx.Rollback()

	var mtype string
	err = tx.QueryRowContext(ctx, a.db.d.bind(
		`SELECT type FROM memories WHERE id = ? AND agent_id = ?`),
		id.String(), a.agentID.String()).Scan(&mtype)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}

	if mtype == model.TableDocuments {
		// Fragments point at their parent through metadata, not a
		// foreign key, so both engines take the same explicit path.
		docRef := a.db.d.jsonText("metadata", "documentId")
		_, err = tx.ExecContext(ctx, a.db.d.bind(
			`DELETE FROM memories WHERE agent_id = ? AND type = ? AND `+docRef+` = ?`),
			a.agentID.String(), model.TableFragments, id.String())
		if err != nil {
			return fmt.Errorf("delete fragments: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, a.db.d.bind(
		`DELETE FROM memories WHERE id = ? AND agent_id = ?`),
		id.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

// DeleteAllMemories bulk-deletes a room's memories in one partition.
func (a *Adapter) DeleteAllMemories(ctx context.Context, roomID uuid.UUID, tableName string) error {
	if tableName == "" {
		tableName = model.TableMemories
	}
	_, err := a.db.exec(ctx,
		`DELETE FROM memories WHERE room_id = ? AND type = ? AND agent_id = ?`,
		roomID.String(), tableName, a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete all memories: %w", err)
	}
	return nil
}

// SearchMemories ranks memories by cosine similarity to the query
// vector, descending, keeping rows at or above the threshold, at most
// Count rows, scoped to the room and partition. Only stored vectors of
// the query's width participate. Engines with a native vector operator
// rank in SQL; others rank in-process.
func (a *Adapter) SearchMemories(ctx context.Context, p SearchMemoriesParams) ([]model.Memory, error) {
	if len(p.Embedding) == 0 {
		return nil, fmt.Errorf("search embedding is required")
	}
	if p.TableName == "" {
		p.TableName = model.TableMemories
	}
	if p.Count <= 0 {
		p.Count = 10
	}

	if expr, native := a.db.d.similarityExpr(); native {
		return a.searchMemoriesSQL(ctx, p, expr)
	}
	return a.searchMemoriesScan(ctx, p)
}

func (a *Adapter) searchMemoriesSQL(ctx context.Context, p SearchMemoriesParams, expr string) ([]model.Memory, error) {
	vec, err := a.db.d.encodeVector(p.Embedding)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + memoryColumns + `, e.vector, ` + expr + ` AS similarity
		 FROM memories m INNER JOIN embeddings e ON e.memory_id = m.id
		 WHERE m.agent_id = ? AND m.type = ? AND e.dims = ?`
	args := []any{vec, a.agentID.String(), p.TableName, len(p.Embedding)}
	if p.RoomID != uuid.Nil {
		query += ` AND m.room_id = ?`
		args = append(args, p.RoomID.String())
	}
	if p.Unique {
		query += ` AND m.is_unique = ?`
		args = append(args, true)
	}
	query += ` AND ` + expr + ` >= ? ORDER BY similarity DESC LIMIT ?`
	args = append(args, vec, p.MatchThreshold, p.Count)

	rows, err := a.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}
	defer rows.Close()
	return a.collectMemories(rows, true, true)
}

func (a *Adapter) searchMemoriesScan(ctx context.Context, p SearchMemoriesParams) ([]model.Memory, error) {
	query := `SELECT ` + memoryColumns + `, e.vector
		 FROM memories m INNER JOIN embeddings e ON e.memory_id = m.id
		 WHERE m.agent_id = ? AND m.type = ? AND e.dims = ?`
	args := []any{a.agentID.String(), p.TableName, len(p.Embedding)}
	if p.RoomID != uuid.Nil {
		query += ` AND m.room_id = ?`
		args = append(args, p.RoomID.String())
	}
	if p.Unique {
		query += ` AND m.is_unique = ?`
		args = append(args, true)
	}

	rows, err := a.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}
	defer rows.Close()

	candidates, err := a.collectMemories(rows, true, false)
	if err != nil {
		return nil, err
	}

	var matched []model.Memory
	for _, m := range candidates {
		sim := embedding.CosineSimilarity(p.Embedding, m.Embedding)
		if sim < p.MatchThreshold {
			continue
		}
		m.Similarity = sim
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Similarity > matched[j].Similarity
	})
	if len(matched) > p.Count {
		matched = matched[:p.Count]
	}
	return matched, nil
}

func (a *Adapter) scanMemory(row scanner, withVector, withSimilarity bool) (*model.Memory, error) {
	var m model.Memory
	var id, mtype string
	var entityID, agentID, roomID, worldID, content, metadata sql.NullString
	var vector sql.NullString
	var similarity sql.NullFloat64

	dest := []any{&id, &mtype, &entityID, &agentID, &roomID, &worldID, &content, &metadata, &m.Unique, &m.CreatedAt}
	if withVector {
		dest = append(dest, &vector)
	}
	if withSimilarity {
		dest = append(dest, &similarity)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	m.ID, _ = uuid.Parse(id)
	m.EntityID = scanNullID(entityID)
	m.AgentID = scanNullID(agentID)
	m.RoomID = scanNullID(roomID)
	m.WorldID = scanNullID(worldID)

	var err error
	if m.Content, err = decodeJSON(content); err != nil {
		return nil, err
	}
	if m.Metadata, err = decodeJSON(metadata); err != nil {
		return nil, err
	}
	if vector.Valid {
		if m.Embedding, err = a.db.d.decodeVector([]byte(vector.String)); err != nil {
			return nil, err
		}
	}
	if similarity.Valid {
		m.Similarity = similarity.Float64
	}
	return &m, nil
}

func (a *Adapter) collectMemories(rows *sql.Rows, withVector, withSimilarity bool) ([]model.Memory, error) {
	var memories []model.Memory
	for rows.Next() {
		m, err := a.scanMemory(rows, withVector, withSimilarity)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, *m)
	}
	return memories, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/mwhitby/agent-store/internal/model"
)

// Log appends an entry to the journal. IDs are ULIDs so rows sort by
// insertion time without a secondary index.
func (a *Adapter) Log(ctx context.Context, p LogParams) error {
	if p.Type == "" {
		return fmt.Errorf("log type is required")
	}
	body, err := encodeJSON(p.Body)
	if err != nil {
		return err
	}
	_, err = a.db.exec(ctx,
		`INSERT INTO logs (id, agent_id, entity_id, room_id, type, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ulid.Make().String(), a.agentID.String(), p.EntityID.String(),
		p.RoomID.String(), p.Type, body, now())
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// GetLogs reads journal entries for an entity, newest first.
func (a *Adapter) GetLogs(ctx context.Context, q LogQuery) ([]model.LogEntry, error) {
	where := []string{"agent_id = ?", "entity_id = ?"}
	args := []any{a.agentID.String(), q.EntityID.String()}
	if q.RoomID != uuid.Nil {
		where = append(where, "room_id = ?")
		args = append(args, q.RoomID.String())
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, q.Type)
	}

	query := `SELECT id, agent_id, entity_id, room_id, type, body, created_at
		 FROM logs WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id DESC`
	if q.Count > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Count)
	}

	rows, err := a.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get logs: %w", err)
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteLog removes a journal entry, succeeding whether or not it
// existed.
func (a *Adapter) DeleteLog(ctx context.Context, id string) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM logs WHERE id = ? AND agent_id = ?`,
		id, a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	return nil
}

func scanLogEntry(row scanner) (*model.LogEntry, error) {
	var e model.LogEntry
	var agentID, entityID, roomID string
	var body sql.NullString
	if err := row.Scan(&e.ID, &agentID, &entityID, &roomID, &e.Type, &body, &e.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.Body, err = decodeJSON(body); err != nil {
		return nil, err
	}
	e.AgentID, _ = uuid.Parse(agentID)
	e.EntityID, _ = uuid.Parse(entityID)
	e.RoomID, _ = uuid.Parse(roomID)
	return &e, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

// CreateEntities inserts a batch of entities in one transaction.
// Returns false without inserting anything when any id already exists.
func (a *Adapter) CreateEntities(ctx context.Context, entities []*model.Entity) (bool, error) {
	if len(entities) == 0 {
		return true, nil
	}

	tx, err := a.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("create entities: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entities {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		names, err := encodeStringList(e.Names)
		if err != nil {
			return false, err
		}
		metadata, err := encodeJSON(e.Metadata)
		if err != nil {
			return false, err
		}
		res, err := tx.ExecContext(ctx, a.db.d.bind(
			`INSERT INTO entities (id, agent_id, names, metadata) VALUES (?, ?, ?, ?)
			 ON CONFLICT DO NOTHING`),
			e.ID.String(), a.agentID.String(), names, metadata)
		if err != nil {
			return false, fmt.Errorf("create entity: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("create entity: %w", err)
		}
		if n == 0 {
			return false, nil
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("create entities: %w", err)
	}
	return true, nil
}

// GetEntitiesByIDs returns the entities matching ids, skipping any that
// are absent.
func (a *Adapter) GetEntitiesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Entity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := []any{a.agentID.String()}
	for _, id := range ids {
		args = append(args, id.String())
	}
	rows, err := a.db.query(ctx,
		`SELECT id, agent_id, names, metadata FROM entities
		 WHERE agent_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get entities: %w", err)
	}
	defer rows.Close()
	return collectEntities(rows)
}

// GetEntitiesForRoom returns the entities participating in a room.
func (a *Adapter) GetEntitiesForRoom(ctx context.Context, roomID uuid.UUID) ([]model.Entity, error) {
	rows, err := a.db.query(ctx,
		`SELECT DISTINCT e.id, e.agent_id, e.names, e.metadata
		 FROM entities e
		 INNER JOIN participants p ON p.entity_id = e.id
		 WHERE p.room_id = ? AND e.agent_id = ?`,
		roomID.String(), a.agentID.String())
	if err != nil {
		return nil, fmt.Errorf("get entities for room: %w", err)
	}
	defer rows.Close()
	return collectEntities(rows)
}

// UpdateEntity replaces names and metadata wholesale. Unlike agent
// settings there is no merge: callers supply the full replacement.
func (a *Adapter) UpdateEntity(ctx context.Context, entity *model.Entity) error {
	names, err := encodeStringList(entity.Names)
	if err != nil {
		return err
	}
	metadata, err := encodeJSON(entity.Metadata)
	if err != nil {
		return err
	}
	_, err = a.db.exec(ctx,
		`UPDATE entities SET names = ?, metadata = ? WHERE id = ? AND agent_id = ?`,
		names, metadata, entity.ID.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	return nil
}

// DeleteEntity removes an entity and its components.
func (a *Adapter) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM entities WHERE id = ? AND agent_id = ?`, id.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	return nil
}

func collectEntities(rows *sql.Rows) ([]model.Entity, error) {
	var entities []model.Entity
	for rows.Next() {
		var e model.Entity
		var id, agentID string
		var names, metadata sql.NullString
		if err := rows.Scan(&id, &agentID, &names, &metadata); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		e.ID, _ = uuid.Parse(id)
		e.AgentID, _ = uuid.Parse(agentID)
		e.Names = decodeStringList(names)
		m, err := decodeJSON(metadata)
		if err != nil {
			return nil, err
		}
		e.Metadata = m
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

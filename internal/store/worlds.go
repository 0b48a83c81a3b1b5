package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

// CreateWorld inserts a world and returns its id (generated when the
// input carries none).
func (a *Adapter) CreateWorld(ctx context.Context, w *model.World) (uuid.UUID, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	metadata, err := encodeJSON(w.Metadata)
	if err != nil {
		return uuid.Nil, err
	}
	_, err = a.db.exec(ctx,
		`INSERT INTO worlds (id, agent_id, name, server_id, metadata) VALUES (?, ?, ?, ?, ?)`,
		w.ID.String(), a.agentID.String(), w.Name, w.ServerID, metadata)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create world: %w", err)
	}
	return w.ID, nil
}

// GetWorld returns a world by id, or nil when absent.
func (a *Adapter) GetWorld(ctx context.Context, id uuid.UUID) (*model.World, error) {
	row := a.db.queryRow(ctx,
		`SELECT id, agent_id, name, server_id, metadata FROM worlds WHERE id = ? AND agent_id = ?`,
		id.String(), a.agentID.String())
	w, err := scanWorld(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get world: %w", err)
	}
	return w, nil
}

// GetAllWorlds returns every world owned by the agent.
func (a *Adapter) GetAllWorlds(ctx context.Context) ([]model.World, error) {
	rows, err := a.db.query(ctx,
		`SELECT id, agent_id, name, server_id, metadata FROM worlds WHERE agent_id = ?`,
		a.agentID.String())
	if err != nil {
		return nil, fmt.Errorf("get worlds: %w", err)
	}
	defer rows.Close()

	var worlds []model.World
	for rows.Next() {
		w, err := scanWorld(rows)
		if err != nil {
			return nil, fmt.Errorf("get worlds: %w", err)
		}
		worlds = append(worlds, *w)
	}
	return worlds, rows.Err()
}

// UpdateWorld replaces the world's fields wholesale.
func (a *Adapter) UpdateWorld(ctx context.Context, w *model.World) error {
	metadata, err := encodeJSON(w.Metadata)
	if err != nil {
		return err
	}
	_, err = a.db.exec(ctx,
		`UPDATE worlds SET name = ?, server_id = ?, metadata = ? WHERE id = ? AND agent_id = ?`,
		w.Name, w.ServerID, metadata, w.ID.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("update world: %w", err)
	}
	return nil
}

// RemoveWorld deletes a world; its rooms and their participants go
// with it via cascade.
func (a *Adapter) RemoveWorld(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM worlds WHERE id = ? AND agent_id = ?`, id.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("remove world: %w", err)
	}
	return nil
}

func scanWorld(row scanner) (*model.World, error) {
	var w model.World
	var id, agentID string
	var serverID, metadata sql.NullString
	if err := row.Scan(&id, &agentID, &w.Name, &serverID, &metadata); err != nil {
		return nil, err
	}
	w.ID, _ = uuid.Parse(id)
	w.AgentID, _ = uuid.Parse(agentID)
	w.ServerID = serverID.String
	m, err := decodeJSON(metadata)
	if err != nil {
		return nil, err
	}
	w.Metadata = m
	return &w, nil
}

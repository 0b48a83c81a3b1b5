package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

const componentColumns = `id, entity_id, agent_id, room_id, world_id, source_entity_id, type, data, created_at`

// CreateComponent inserts a component. A duplicate id reports false.
func (a *Adapter) CreateComponent(ctx context.Context, c *model.Component) (bool, error) {
	if c.EntityID == uuid.Nil || c.Type == "" {
		return false, fmt.Errorf("component entity id and type are required")
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	data, err := encodeJSON(c.Data)
	if err != nil {
		return false, err
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = now()
	}

	res, err := a.db.exec(ctx,
		`INSERT INTO components (id, entity_id, agent_id, room_id, world_id, source_entity_id, type, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		c.ID.String(), c.EntityID.String(), a.agentID.String(),
		nullID(c.RoomID), nullID(c.WorldID), nullID(c.SourceEntityID),
		c.Type, data, c.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("create component: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create component: %w", err)
	}
	return n > 0, nil
}

// GetComponent looks up a component by (entity, type), optionally
// narrowed by world and source entity. At most one row is returned;
// if duplicates exist from a race, the most recent wins. Absence is
// a nil result, not an error.
func (a *Adapter) GetComponent(ctx context.Context, entityID uuid.UUID, ctype string, worldID, sourceEntityID uuid.UUID) (*model.Component, error) {
	where := []string{"entity_id = ?", "type = ?", "agent_id = ?"}
	args := []any{entityID.String(), ctype, a.agentID.String()}
	if worldID != uuid.Nil {
		where = append(where, "world_id = ?")
		args = append(args, worldID.String())
	}
	if sourceEntityID != uuid.Nil {
		where = append(where, "source_entity_id = ?")
		args = append(args, sourceEntityID.String())
	}

	row := a.db.queryRow(ctx,
		`SELECT `+componentColumns+` FROM components
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at DESC LIMIT 1`, args...)
	c, err := scanComponent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get component: %w", err)
	}
	return c, nil
}

// GetComponents returns every component attached to an entity.
func (a *Adapter) GetComponents(ctx context.Context, entityID uuid.UUID) ([]model.Component, error) {
	rows, err := a.db.query(ctx,
		`SELECT `+componentColumns+` FROM components
		 WHERE entity_id = ? AND agent_id = ? ORDER BY created_at`,
		entityID.String(), a.agentID.String())
	if err != nil {
		return nil, fmt.Errorf("get components: %w", err)
	}
	defer rows.Close()

	var components []model.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("get components: %w", err)
		}
		components = append(components, *c)
	}
	return components, rows.Err()
}

// UpdateComponent replaces the component's data. Idempotent: updating
// the same row twice with the same data is harmless.
func (a *Adapter) UpdateComponent(ctx context.Context, c *model.Component) error {
	data, err := encodeJSON(c.Data)
	if err != nil {
		return err
	}
	_, err = a.db.exec(ctx,
		`UPDATE components SET data = ?, type = ? WHERE id = ? AND agent_id = ?`,
		data, c.Type, c.ID.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("update component: %w", err)
	}
	return nil
}

// DeleteComponent removes exactly the row with the given id.
func (a *Adapter) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM components WHERE id = ? AND agent_id = ?`, id.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete component: %w", err)
	}
	return nil
}

func scanComponent(row scanner) (*model.Component, error) {
	var c model.Component
	var id, entityID, agentID string
	var roomID, worldID, sourceEntityID, data sql.NullString
	if err := row.Scan(&id, &entityID, &agentID, &roomID, &worldID, &sourceEntityID,
		&c.Type, &data, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID, _ = uuid.Parse(id)
	c.EntityID, _ = uuid.Parse(entityID)
	c.AgentID, _ = uuid.Parse(agentID)
	c.RoomID = scanNullID(roomID)
	c.WorldID = scanNullID(worldID)
	c.SourceEntityID = scanNullID(sourceEntityID)
	m, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	c.Data = m
	return &c, nil
}

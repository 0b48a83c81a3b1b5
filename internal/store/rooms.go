package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

const roomColumns = `id, agent_id, world_id, name, source, type, channel_id, server_id, metadata`

// CreateRooms inserts a batch of rooms in one transaction and returns
// the ids actually created. Ids that already exist are silently
// filtered out, so the returned list may be shorter than the input;
// pre-existing rows keep their original fields.
func (a *Adapter) CreateRooms(ctx context.Context, rooms []*model.Room) ([]uuid.UUID, error) {
	if len(rooms) == 0 {
		return nil, nil
	}

	tx, err := a.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create rooms: %w", err)
	}
	defer tx.Rollback()

	var created []uuid.UUID
	ts := now()
	for _, r := range rooms {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		metadata, err := encodeJSON(r.Metadata)
		if err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx, a.db.d.bind(
			`INSERT INTO rooms (id, agent_id, world_id, name, source, type, channel_id, server_id, metadata, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT DO NOTHING`),
			r.ID.String(), a.agentID.String(), nullID(r.WorldID),
			r.Name, r.Source, string(r.Type), r.ChannelID, r.ServerID, metadata, ts)
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}
		if n > 0 {
			created = append(created, r.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create rooms: %w", err)
	}
	return created, nil
}

// GetRoomsByIDs returns the rooms matching ids, skipping absentees.
func (a *Adapter) GetRoomsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := []any{a.agentID.String()}
	for _, id := range ids {
		args = append(args, id.String())
	}
	rows, err := a.db.query(ctx,
		`SELECT `+roomColumns+` FROM rooms
		 WHERE agent_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get rooms: %w", err)
	}
	defer rows.Close()
	return collectRooms(rows)
}

// GetRoomsByWorld returns every room in a world.
func (a *Adapter) GetRoomsByWorld(ctx context.Context, worldID uuid.UUID) ([]model.Room, error) {
	rows, err := a.db.query(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE world_id = ? AND agent_id = ?`,
		worldID.String(), a.agentID.String())
	if err != nil {
		return nil, fmt.Errorf("get rooms by world: %w", err)
	}
	defer rows.Close()
	return collectRooms(rows)
}

// UpdateRoom replaces the room's fields wholesale.
func (a *Adapter) UpdateRoom(ctx context.Context, room *model.Room) error {
	metadata, err := encodeJSON(room.Metadata)
	if err != nil {
		return err
	}
	_, err = a.db.exec(ctx,
		`UPDATE rooms SET world_id = ?, name = ?, source = ?, type = ?, channel_id = ?, server_id = ?, metadata = ?
		 WHERE id = ? AND agent_id = ?`,
		nullID(room.WorldID), room.Name, room.Source, string(room.Type),
		room.ChannelID, room.ServerID, metadata, room.ID.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// DeleteRoom removes a room; its participants go with it via cascade.
func (a *Adapter) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM rooms WHERE id = ? AND agent_id = ?`, id.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// DeleteRoomsByWorldID bulk-deletes every room in a world.
func (a *Adapter) DeleteRoomsByWorldID(ctx context.Context, worldID uuid.UUID) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM rooms WHERE world_id = ? AND agent_id = ?`,
		worldID.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete rooms by world: %w", err)
	}
	return nil
}

// DeleteRoomsByServerID bulk-deletes every room tagged with an
// external server id.
func (a *Adapter) DeleteRoomsByServerID(ctx context.Context, serverID string) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM rooms WHERE server_id = ? AND agent_id = ?`,
		serverID, a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete rooms by server: %w", err)
	}
	return nil
}

func collectRooms(rows *sql.Rows) ([]model.Room, error) {
	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		var id, agentID string
		var worldID, name, source, ctype, channelID, serverID, metadata sql.NullString
		if err := rows.Scan(&id, &agentID, &worldID, &name, &source, &ctype,
			&channelID, &serverID, &metadata); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		r.ID, _ = uuid.Parse(id)
		r.AgentID, _ = uuid.Parse(agentID)
		r.WorldID = scanNullID(worldID)
		r.Name = name.String
		r.Source = source.String
		r.Type = model.ChannelType(ctype.String)
		r.ChannelID = channelID.String
		r.ServerID = serverID.String
		m, err := decodeJSON(metadata)
		if err != nil {
			return nil, err
		}
		r.Metadata = m
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

// AddParticipants records room membership for a batch of entities.
// Membership is an append-only multiset: adding an entity that is
// already a participant inserts another row rather than erroring.
func (a *Adapter) AddParticipants(ctx context.Context, entityIDs []uuid.UUID, roomID uuid.UUID) (bool, error) {
	if len(entityIDs) == 0 {
		return true, nil
	}

	tx, err := a.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("add participants: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	for _, entityID := range entityIDs {
		_, err := tx.ExecContext(ctx, a.db.d.bind(
			`INSERT INTO participants (id, entity_id, room_id, agent_id, user_state, created_at)
			 VALUES (?, ?, ?, ?, NULL, ?)`),
			uuid.New().String(), entityID.String(), roomID.String(), a.agentID.String(), ts)
		if err != nil {
			return false, fmt.Errorf("add participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("add participants: %w", err)
	}
	return true, nil
}

// RemoveParticipant deletes every membership row for the entity in the
// room (duplicates included). True even when none existed.
func (a *Adapter) RemoveParticipant(ctx context.Context, entityID, roomID uuid.UUID) (bool, error) {
	_, err := a.db.exec(ctx,
		`DELETE FROM participants WHERE entity_id = ? AND room_id = ? AND agent_id = ?`,
		entityID.String(), roomID.String(), a.agentID.String())
	if err != nil {
		return false, fmt.Errorf("remove participant: %w", err)
	}
	return true, nil
}

// GetParticipantsForEntity returns the membership rows for an entity.
func (a *Adapter) GetParticipantsForEntity(ctx context.Context, entityID uuid.UUID) ([]model.Participant, error) {
	rows, err := a.db.query(ctx,
		`SELECT id, entity_id, room_id, agent_id, user_state, created_at
		 FROM participants WHERE entity_id = ? AND agent_id = ? ORDER BY created_at`,
		entityID.String(), a.agentID.String())
	if err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		var id, eid, rid, aid string
		var state sql.NullString
		if err := rows.Scan(&id, &eid, &rid, &aid, &state, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.ID, _ = uuid.Parse(id)
		p.EntityID, _ = uuid.Parse(eid)
		p.RoomID, _ = uuid.Parse(rid)
		p.AgentID, _ = uuid.Parse(aid)
		if state.Valid {
			s := model.UserState(state.String)
			p.UserState = &s
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// GetParticipantsForRoom returns the distinct entity ids present in a
// room.
func (a *Adapter) GetParticipantsForRoom(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := a.db.query(ctx,
		`SELECT DISTINCT entity_id FROM participants WHERE room_id = ? AND agent_id = ?`,
		roomID.String(), a.agentID.String())
	if err != nil {
		return nil, fmt.Errorf("get participants for room: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// GetRoomsForParticipant returns the distinct rooms an entity is in.
func (a *Adapter) GetRoomsForParticipant(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error) {
	return a.GetRoomsForParticipants(ctx, []uuid.UUID{entityID})
}

// GetRoomsForParticipants returns the distinct rooms containing any of
// the given entities.
func (a *Adapter) GetRoomsForParticipants(ctx context.Context, entityIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	args := []any{a.agentID.String()}
	for _, id := range entityIDs {
		args = append(args, id.String())
	}
	rows, err := a.db.query(ctx,
		`SELECT DISTINCT room_id FROM participants
		 WHERE agent_id = ? AND entity_id IN (`+placeholders(len(entityIDs))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get rooms for participants: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// GetParticipantUserState returns the entity's state in a room, nil
// when cleared or never set. With duplicate membership rows the most
// recent row answers, so reads stay coherent.
func (a *Adapter) GetParticipantUserState(ctx context.Context, roomID, entityID uuid.UUID) (*model.UserState, error) {
	var state sql.NullString
	err := a.db.queryRow(ctx,
		`SELECT user_state FROM participants
		 WHERE room_id = ? AND entity_id = ? AND agent_id = ?
		 ORDER BY created_at DESC LIMIT 1`,
		roomID.String(), entityID.String(), a.agentID.String()).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get participant state: %w", err)
	}
	if !state.Valid {
		return nil, nil
	}
	s := model.UserState(state.String)
	return &s, nil
}

// SetParticipantUserState sets (or, with nil, clears) the entity's
// state in a room. Every duplicate membership row is updated so any
// row read afterwards agrees.
func (a *Adapter) SetParticipantUserState(ctx context.Context, roomID, entityID uuid.UUID, state *model.UserState) error {
	var value any
	if state != nil {
		switch *state {
		case model.UserStateFollowed, model.UserStateMuted:
			value = string(*state)
		default:
			return fmt.Errorf("invalid user state %q", *state)
		}
	}
	_, err := a.db.exec(ctx,
		`UPDATE participants SET user_state = ? WHERE room_id = ? AND entity_id = ? AND agent_id = ?`,
		value, roomID.String(), entityID.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("set participant state: %w", err)
	}
	return nil
}

func collectIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

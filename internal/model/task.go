package model

import "github.com/google/uuid"

// Task is a schedulable unit of work queued through the store. Metadata
// may carry scheduler hints such as "updateInterval" and "repeat"; the
// store treats it as opaque JSON.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	AgentID     uuid.UUID      `json:"agent_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	RoomID      uuid.UUID      `json:"room_id,omitempty"`
	WorldID     uuid.UUID      `json:"world_id,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UpdatedAt   int64          `json:"updated_at"`
}

// TaskUpdate is a partial update applied to an existing task. Nil
// fields are untouched. Metadata, when present, replaces the stored
// object as a whole; unlike agent settings it is not deep-merged, so
// callers re-supply any keys they want to keep.
type TaskUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	RoomID      *uuid.UUID     `json:"room_id,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// LogEntry is an append-only audit/event record. IDs are ULIDs so the
// journal sorts by insertion time.
type LogEntry struct {
	ID        string         `json:"id"`
	AgentID   uuid.UUID      `json:"agent_id"`
	EntityID  uuid.UUID      `json:"entity_id"`
	RoomID    uuid.UUID      `json:"room_id"`
	Type      string         `json:"type"`
	Body      map[string]any `json:"body,omitempty"`
	CreatedAt int64          `json:"created_at"`
}

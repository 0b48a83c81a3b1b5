package model

import "github.com/google/uuid"

// Entity is a person, user, or bot known to an agent.
type Entity struct {
	ID       uuid.UUID      `json:"id"`
	AgentID  uuid.UUID      `json:"agent_id"`
	Names    []string       `json:"names"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Component is a typed attribute attached to an entity. An entity may
// carry many components, distinguished by Type; lookups are always by
// the (entity, type) pair.
type Component struct {
	ID             uuid.UUID      `json:"id"`
	EntityID       uuid.UUID      `json:"entity_id"`
	AgentID        uuid.UUID      `json:"agent_id"`
	RoomID         uuid.UUID      `json:"room_id,omitempty"`
	WorldID        uuid.UUID      `json:"world_id,omitempty"`
	SourceEntityID uuid.UUID      `json:"source_entity_id,omitempty"`
	Type           string         `json:"type"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      int64          `json:"created_at"`
}

// Relationship is a directed tie between two entities. Source and target
// are ordered; the reverse direction is a separate row.
type Relationship struct {
	ID             uuid.UUID      `json:"id"`
	AgentID        uuid.UUID      `json:"agent_id"`
	SourceEntityID uuid.UUID      `json:"source_entity_id"`
	TargetEntityID uuid.UUID      `json:"target_entity_id"`
	Tags           []string       `json:"tags,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      int64          `json:"created_at"`
}

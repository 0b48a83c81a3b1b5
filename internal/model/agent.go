// Package model defines the domain types persisted by the store.
package model

import "github.com/google/uuid"

// Agent is a configured AI persona. It is the root of the data model:
// every other row is scoped to exactly one owning agent.
type Agent struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Username  string         `json:"username,omitempty"`
	Bio       string         `json:"bio,omitempty"`
	Enabled   bool           `json:"enabled"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

// AgentUpdate is a partial update applied to an existing agent.
// Nil fields are left untouched. Settings are deep-merged: a null value
// at any depth deletes that key instead of storing a literal null.
type AgentUpdate struct {
	Name     *string        `json:"name,omitempty"`
	Username *string        `json:"username,omitempty"`
	Bio      *string        `json:"bio,omitempty"`
	Enabled  *bool          `json:"enabled,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

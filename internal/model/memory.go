package model

import "github.com/google/uuid"

// Logical memory partitions. Memories live in one physical table; the
// partition name selects the slice a call operates on.
const (
	TableMemories  = "memories"
	TableMessages  = "messages"
	TableFacts     = "facts"
	TableDocuments = "documents"
	TableFragments = "fragments"
)

// Memory is a stored message, fact, document, or document fragment.
// Content always carries a "text" key plus arbitrary structured fields.
type Memory struct {
	ID        uuid.UUID      `json:"id"`
	EntityID  uuid.UUID      `json:"entity_id"`
	AgentID   uuid.UUID      `json:"agent_id"`
	RoomID    uuid.UUID      `json:"room_id"`
	WorldID   uuid.UUID      `json:"world_id,omitempty"`
	Content   map[string]any `json:"content"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Unique    bool           `json:"unique"`
	CreatedAt int64          `json:"created_at"`

	// Similarity is populated by embedding search; zero otherwise.
	Similarity float64 `json:"similarity,omitempty"`
}

// Text returns the content "text" field, or "" when unset.
func (m *Memory) Text() string {
	if m.Content == nil {
		return ""
	}
	s, _ := m.Content["text"].(string)
	return s
}

// DocumentID returns the parent document id for fragment memories,
// read from metadata["documentId"]. Returns uuid.Nil when absent.
func (m *Memory) DocumentID() uuid.UUID {
	if m.Metadata == nil {
		return uuid.Nil
	}
	s, _ := m.Metadata["documentId"].(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultEmbeddingDims is the vector width assumed until a caller
// reconfigures it via EnsureEmbeddingDimension.
const DefaultEmbeddingDims = 384

// Adapter implements Store for one agent against a shared DB. Multiple
// adapters (one per agent) may share a single DB; every statement is
// scoped by agent id.
type Adapter struct {
	db      *DB
	agentID uuid.UUID
	dims    atomic.Int32
}

var _ Store = (*Adapter)(nil)

// New creates an adapter scoped to the given agent.
func New(db *DB, agentID uuid.UUID) *Adapter {
	a := &Adapter{db: db, agentID: agentID}
	a.dims.Store(DefaultEmbeddingDims)
	return a
}

// AgentID returns the owning agent's id.
func (a *Adapter) AgentID() uuid.UUID { return a.agentID }

func now() int64 { return time.Now().UnixMilli() }

// nullID maps uuid.Nil to SQL NULL.
func nullID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

func scanNullID(s sql.NullString) uuid.UUID {
	if !s.Valid {
		return uuid.Nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// encodeJSON marshals a map for a JSON column; nil maps store NULL so
// "absent" and "empty object" stay distinguishable.
func encodeJSON(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return string(b), nil
}

func decodeJSON(s sql.NullString) (map[string]any, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return m, nil
}

// encodeStringList marshals a list column; nil stores as the empty
// list so round trips are verbatim.
func encodeStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeStringList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s.String), &list); err != nil {
		return nil
	}
	return list
}

// placeholders returns "?, ?, ..." for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// tagConditions appends one LIKE clause per tag, giving AND semantics
// over a JSON-encoded string list column.
func tagConditions(column string, tags []string, where *[]string, args *[]any) {
	for _, tag := range tags {
		*where = append(*where, column+" LIKE ?")
		*args = append(*args, `%"`+tag+`"%`)
	}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SetCache stores a value under key, serialized as JSON. Writing an
// existing key overwrites it.
func (a *Adapter) SetCache(ctx context.Context, key string, value any) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("cache key is required")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode cache value: %w", err)
	}
	_, err = a.db.exec(ctx,
		`INSERT INTO cache (agent_id, key, value, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (agent_id, key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		a.agentID.String(), key, string(raw), now())
	if err != nil {
		return false, fmt.Errorf("set cache: %w", err)
	}
	return true, nil
}

// GetCache reads a cache entry. ok is false when the key is absent; the
// raw JSON otherwise round-trips the stored value exactly.
func (a *Adapter) GetCache(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var raw string
	err := a.db.queryRow(ctx,
		`SELECT value FROM cache WHERE agent_id = ? AND key = ?`,
		a.agentID.String(), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache: %w", err)
	}
	return json.RawMessage(raw), true, nil
}

// DeleteCache removes a key, succeeding whether or not it existed.
func (a *Adapter) DeleteCache(ctx context.Context, key string) (bool, error) {
	_, err := a.db.exec(ctx,
		`DELETE FROM cache WHERE agent_id = ? AND key = ?`,
		a.agentID.String(), key)
	if err != nil {
		return false, fmt.Errorf("delete cache: %w", err)
	}
	return true, nil
}

package store

import (
	"context"
	"os"
)

// Stats holds database statistics for diagnostics and the CLI.
type Stats struct {
	Driver      string       `json:"driver"`
	DBPath      string       `json:"db_path,omitempty"`
	DBSizeBytes int64        `json:"db_size_bytes,omitempty"`
	Agents      int          `json:"agents"`
	Tables      []TableStats `json:"tables"`
}

// TableStats holds a row count for one table.
type TableStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var statTables = []string{
	"worlds", "rooms", "entities", "components", "participants",
	"relationships", "memories", "embeddings", "tasks", "cache", "logs",
}

// Stats returns row counts per table plus, for file-backed engines, the
// database size on disk.
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Driver: db.d.name(), DBPath: db.path}

	if db.path != "" {
		if info, err := os.Stat(db.path); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM agents`).Scan(&st.Agents); err != nil {
		return nil, err
	}
	for _, table := range statTables {
		var count int
		if err := db.queryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
			return nil, err
		}
		st.Tables = append(st.Tables, TableStats{Name: table, Count: count})
	}
	return st, nil
}

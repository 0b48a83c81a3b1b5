package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// A migration is a named, ordered batch of DDL statements. Applied
// names are journaled in the migrations table, so re-running is a
// no-op and new migrations append cleanly.
type migration struct {
	name       string
	statements func(d dialect) []string
}

var migrations = []migration{
	{name: "0001_init", statements: func(d dialect) []string { return d.schema() }},
}

// Migrate applies any migrations not yet journaled. Safe to call
// repeatedly and from multiple deploys of the same version.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.exec(ctx, `CREATE TABLE IF NOT EXISTS migrations (
		name       TEXT PRIMARY KEY,
		applied_at BIGINT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.queryRow(ctx, `SELECT COUNT(*) FROM migrations WHERE name = ?`, m.name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", m.name, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.sql.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.name, err)
		}
		for _, stmt := range m.statements(db.d) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("apply migration %s: %w", m.name, err)
			}
		}
		_, err = tx.ExecContext(ctx, db.d.bind(`INSERT INTO migrations (name, applied_at) VALUES (?, ?)`),
			m.name, time.Now().UnixMilli())
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("journal migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.name, err)
		}
		db.log.Info("migration applied", zap.String("name", m.name))
	}

	return nil
}

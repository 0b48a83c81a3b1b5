package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(ctx, Config{Driver: DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	agent, err := New(db, uuid.Nil).EnsureAgentExists(ctx, &model.Agent{Name: "keeper"})
	if err != nil {
		t.Fatalf("ensure agent: %v", err)
	}
	db.Close()

	// Reopening replays no migrations and keeps existing data.
	db, err = Open(ctx, Config{Driver: DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("expected %d journaled migrations, got %d", len(migrations), count)
	}

	got, err := New(db, agent.ID).GetAgent(ctx, agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if got == nil || got.Name != "keeper" {
		t.Error("expected data to survive reopen")
	}
}

func TestStatsCountsTables(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	worldID := seedWorld(t, a)
	seedRoom(t, a, worldID)
	seedEntity(t, a, "alice")

	stats, err := a.db.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Agents != 1 {
		t.Errorf("expected 1 agent, got %d", stats.Agents)
	}
	if stats.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", stats.Driver)
	}
	if stats.DBSizeBytes == 0 {
		t.Error("expected non-zero db size")
	}

	counts := map[string]int{}
	for _, tbl := range stats.Tables {
		counts[tbl.Name] = tbl.Count
	}
	if counts["rooms"] != 1 || counts["entities"] != 1 || counts["worlds"] != 1 {
		t.Errorf("unexpected table counts: %v", counts)
	}
}

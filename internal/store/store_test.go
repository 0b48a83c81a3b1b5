package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T) *Adapter {
	t.Helper()
	db := newTestDB(t)
	agent, err := New(db, uuid.Nil).EnsureAgentExists(context.Background(), &model.Agent{
		Name:    "test-agent",
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("ensure agent: %v", err)
	}
	return New(db, agent.ID)
}

func seedWorld(t *testing.T, a *Adapter) uuid.UUID {
	t.Helper()
	id, err := a.CreateWorld(context.Background(), &model.World{Name: "test-world"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	return id
}

func seedRoom(t *testing.T, a *Adapter, worldID uuid.UUID) uuid.UUID {
	t.Helper()
	room := &model.Room{WorldID: worldID, Name: "test-room", Source: "test", Type: model.ChannelGroup}
	ids, err := a.CreateRooms(context.Background(), []*model.Room{room})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 room id, got %d", len(ids))
	}
	return ids[0]
}

func seedEntity(t *testing.T, a *Adapter, name string) uuid.UUID {
	t.Helper()
	e := &model.Entity{Names: []string{name}}
	ok, err := a.CreateEntities(context.Background(), []*model.Entity{e})
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	if !ok {
		t.Fatal("expected entity create to succeed")
	}
	return e.ID
}

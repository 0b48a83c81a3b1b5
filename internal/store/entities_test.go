package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

func TestCreateEntitiesBatch(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	e1 := &model.Entity{Names: []string{"alice", "al"}}
	e2 := &model.Entity{Names: []string{"bob"}, Metadata: map[string]any{"source": "discord"}}
	ok, err := a.CreateEntities(ctx, []*model.Entity{e1, e2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !ok {
		t.Fatal("expected create to succeed")
	}

	got, err := a.GetEntitiesByIDs(ctx, []uuid.UUID{e1.ID, e2.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(got))
	}
}

func TestCreateEntitiesDuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	existing := seedEntity(t, a, "alice")

	fresh := &model.Entity{Names: []string{"new"}}
	dup := &model.Entity{ID: existing, Names: []string{"alice"}}
	ok, err := a.CreateEntities(ctx, []*model.Entity{fresh, dup})
	if err != nil {
		t.Fatalf("create should not error on duplicate: %v", err)
	}
	if ok {
		t.Error("expected duplicate batch to report false")
	}

	// The whole batch rolls back: the fresh entity must not exist.
	got, err := a.GetEntitiesByIDs(ctx, []uuid.UUID{fresh.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Error("expected no partial insert after duplicate")
	}
}

func TestGetEntitiesByIDsSkipsAbsent(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	id := seedEntity(t, a, "alice")

	got, err := a.GetEntitiesByIDs(ctx, []uuid.UUID{id, uuid.New()})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(got))
	}
}

func TestUpdateEntityWholesale(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	id := seedEntity(t, a, "alice")

	err := a.UpdateEntity(ctx, &model.Entity{
		ID:       id,
		Names:    []string{"alicia"},
		Metadata: map[string]any{"verified": true},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := a.GetEntitiesByIDs(ctx, []uuid.UUID{id})
	if len(got) != 1 {
		t.Fatal("expected entity to exist")
	}
	if len(got[0].Names) != 1 || got[0].Names[0] != "alicia" {
		t.Errorf("expected names replaced wholesale, got %v", got[0].Names)
	}
	if got[0].Metadata["verified"] != true {
		t.Errorf("expected metadata replaced, got %v", got[0].Metadata)
	}
}

func TestGetEntitiesForRoom(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	worldID := seedWorld(t, a)
	roomID := seedRoom(t, a, worldID)
	e1 := seedEntity(t, a, "alice")
	e2 := seedEntity(t, a, "bob")
	seedEntity(t, a, "outsider")

	if _, err := a.AddParticipants(ctx, []uuid.UUID{e1, e2}, roomID); err != nil {
		t.Fatalf("add participants: %v", err)
	}

	got, err := a.GetEntitiesForRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entities in room, got %d", len(got))
	}
}

func TestDeleteEntityCascadesComponents(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	id := seedEntity(t, a, "alice")
	ok, err := a.CreateComponent(ctx, &model.Component{
		EntityID: id,
		Type:     "profile",
		Data:     map[string]any{"bio": "hi"},
	})
	if err != nil || !ok {
		t.Fatalf("create component: ok=%v err=%v", ok, err)
	}

	if err := a.DeleteEntity(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	comps, err := a.GetComponents(ctx, id)
	if err != nil {
		t.Fatalf("get components: %v", err)
	}
	if len(comps) != 0 {
		t.Error("expected components to cascade with entity")
	}
}

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestCreateRelationshipRequiresBothEnds(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	target := seedEntity(t, a, "bob")
	if _, err := a.CreateRelationship(ctx, uuid.Nil, target, nil, nil); err == nil {
		t.Error("expected missing source to be rejected")
	}
}

func TestGetRelationshipOrderedPair(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	alice := seedEntity(t, a, "alice")
	bob := seedEntity(t, a, "bob")

	ok, err := a.CreateRelationship(ctx, alice, bob, []string{"friend"}, nil)
	if err != nil || !ok {
		t.Fatalf("create: ok=%v err=%v", ok, err)
	}

	got, err := a.GetRelationship(ctx, alice, bob)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected relationship")
	}

	// The reverse direction is a separate row and does not exist.
	reverse, err := a.GetRelationship(ctx, bob, alice)
	if err != nil {
		t.Fatalf("get reverse: %v", err)
	}
	if reverse != nil {
		t.Error("expected no reverse relationship")
	}
}

func TestGetRelationshipsTagFilterAND(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	alice := seedEntity(t, a, "alice")
	bob := seedEntity(t, a, "bob")
	carol := seedEntity(t, a, "carol")

	a.CreateRelationship(ctx, alice, bob, []string{"friend", "colleague"}, nil)
	a.CreateRelationship(ctx, alice, carol, []string{"friend"}, nil)

	// Both tags must be present.
	got, err := a.GetRelationships(ctx, alice, []string{"friend", "colleague"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 relationship with both tags, got %d", len(got))
	}
	if got[0].TargetEntityID != bob {
		t.Errorf("expected target bob, got %s", got[0].TargetEntityID)
	}

	got, _ = a.GetRelationships(ctx, alice, []string{"friend"})
	if len(got) != 2 {
		t.Errorf("expected 2 relationships with friend tag, got %d", len(got))
	}
}

func TestGetRelationshipsMatchesEitherEnd(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	alice := seedEntity(t, a, "alice")
	bob := seedEntity(t, a, "bob")

	a.CreateRelationship(ctx, alice, bob, nil, nil)

	got, err := a.GetRelationships(ctx, bob, nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected relationship visible from the target side, got %d", len(got))
	}
}

func TestUpdateRelationshipWholesale(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	alice := seedEntity(t, a, "alice")
	bob := seedEntity(t, a, "bob")

	a.CreateRelationship(ctx, alice, bob, []string{"friend"}, map[string]any{"since": "2024"})

	rel, _ := a.GetRelationship(ctx, alice, bob)
	rel.Tags = []string{"colleague"}
	rel.Metadata = map[string]any{"team": "infra"}
	if err := a.UpdateRelationship(ctx, rel); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := a.GetRelationship(ctx, alice, bob)
	if len(got.Tags) != 1 || got.Tags[0] != "colleague" {
		t.Errorf("expected tags replaced wholesale, got %v", got.Tags)
	}
	if _, present := got.Metadata["since"]; present {
		t.Error("expected metadata replaced, old key survived")
	}
}

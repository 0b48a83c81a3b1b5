package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

func TestCreateAgentDuplicateName(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	ok, err := a.CreateAgent(ctx, &model.Agent{Name: "alice", Enabled: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !ok {
		t.Fatal("expected first create to succeed")
	}

	ok, err = a.CreateAgent(ctx, &model.Agent{Name: "alice"})
	if err != nil {
		t.Fatalf("duplicate create should not error: %v", err)
	}
	if ok {
		t.Error("expected duplicate name to report false")
	}
}

func TestUpdateAgentSettingsMerge(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	agent := &model.Agent{
		Name:    "bob",
		Enabled: true,
		Settings: map[string]any{
			"theme": "dark",
			"secrets": map[string]any{
				"apiKey": "k1",
				"token":  "t1",
			},
		},
	}
	if _, err := a.CreateAgent(ctx, agent); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Null deletes the key, at top level and inside secrets; other keys
	// survive untouched.
	ok, err := a.UpdateAgent(ctx, agent.ID, model.AgentUpdate{
		Settings: map[string]any{
			"theme": nil,
			"secrets": map[string]any{
				"token": nil,
			},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("expected update to find the agent")
	}

	got, err := a.GetAgent(ctx, agent.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, present := got.Settings["theme"]; present {
		t.Error("expected theme to be deleted")
	}
	secrets, _ := got.Settings["secrets"].(map[string]any)
	if secrets == nil {
		t.Fatal("expected secrets to survive")
	}
	if _, present := secrets["token"]; present {
		t.Error("expected secrets.token to be deleted")
	}
	if secrets["apiKey"] != "k1" {
		t.Errorf("expected secrets.apiKey to survive, got %v", secrets["apiKey"])
	}
}

func TestUpdateAgentMissing(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	name := "ghost"
	ok, err := a.UpdateAgent(ctx, uuid.New(), model.AgentUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok {
		t.Error("expected update of missing agent to report false")
	}
}

func TestEnsureAgentExistsReturnsOriginal(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	first, err := a.EnsureAgentExists(ctx, &model.Agent{Name: "carol", Username: "c1"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	// Ensuring again with a different id and username returns the
	// original row, untouched.
	second, err := a.EnsureAgentExists(ctx, &model.Agent{ID: uuid.New(), Name: "carol", Username: "c2"})
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected original id %s, got %s", first.ID, second.ID)
	}
	if second.Username != "c1" {
		t.Errorf("expected original username, got %q", second.Username)
	}
}

func TestDeleteAgentIdempotent(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	ok, err := a.DeleteAgent(ctx, uuid.New())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("expected delete of missing agent to report true")
	}
}

func TestCountAgents(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	// newTestStore seeds one agent.
	n, err := a.CountAgents(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 agent, got %d", n)
	}

	a.CreateAgent(ctx, &model.Agent{Name: "dave"})
	n, _ = a.CountAgents(ctx)
	if n != 2 {
		t.Errorf("expected 2 agents, got %d", n)
	}
}

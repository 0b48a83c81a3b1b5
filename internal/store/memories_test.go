package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

func TestCreateAndGetMemory(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)
	a.EnsureEmbeddingDimension(4)

	worldID := seedWorld(t, a)
	roomID := seedRoom(t, a, worldID)
	entityID := seedEntity(t, a, "alice")

	m := &model.Memory{
		EntityID:  entityID,
		RoomID:    roomID,
		Content:   map[string]any{"text": "hello world"},
		Embedding: []float32{0.1, 0.2, 0.3, 0.4},
	}
	id, err := a.CreateMemory(ctx, m, model.TableMessages)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := a.GetMemoryByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected memory")
	}
	if got.Text() != "hello world" {
		t.Errorf("expected text round trip, got %q", got.Text())
	}
	if len(got.Embedding) != 4 {
		t.Fatalf("expected 4-dim embedding, got %d", len(got.Embedding))
	}
	for i, v := range []float32{0.1, 0.2, 0.3, 0.4} {
		if got.Embedding[i] != v {
			t.Errorf("embedding[%d]: expected %v, got %v", i, v, got.Embedding[i])
		}
	}
}

func TestCreateMemoryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)
	a.EnsureEmbeddingDimension(4)

	_, err := a.CreateMemory(ctx, &model.Memory{
		Content:   map[string]any{"text": "x"},
		Embedding: []float32{1, 2, 3},
	}, model.TableMessages)
	if err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestSearchMemoriesRankingAndThreshold(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)
	a.EnsureEmbeddingDimension(4)

	worldID := seedWorld(t, a)
	roomID := seedRoom(t, a, worldID)

	seed := func(text string, vec []float32) {
		t.Helper()
		_, err := a.CreateMemory(ctx, &model.Memory{
			RoomID:    roomID,
			Content:   map[string]any{"text": text},
			Embedding: vec,
		}, model.TableMessages)
		if err != nil {
			t.Fatalf("create %q: %v", text, err)
		}
	}
	seed("exact", []float32{1, 0, 0, 0})
	seed("close", []float32{0.9, 0.1, 0, 0})
	seed("orthogonal", []float32{0, 1, 0, 0})

	got, err := a.SearchMemories(ctx, SearchMemoriesParams{
		Embedding:      []float32{1, 0, 0, 0},
		MatchThreshold: 0.5,
		Count:          10,
		RoomID:         roomID,
		TableName:      model.TableMessages,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches above threshold, got %d", len(got))
	}
	if got[0].Text() != "exact" || got[1].Text() != "close" {
		t.Errorf("expected descending similarity order, got %q then %q", got[0].Text(), got[1].Text())
	}
	if got[0].Similarity < got[1].Similarity {
		t.Error("expected similarity to be non-increasing")
	}

	// Count caps the result set.
	got, _ = a.SearchMemories(ctx, SearchMemoriesParams{
		Embedding: []float32{1, 0, 0, 0},
		Count:     1,
		RoomID:    roomID,
		TableName: model.TableMessages,
	})
	if len(got) != 1 {
		t.Errorf("expected count cap of 1, got %d", len(got))
	}
}

func TestSearchMemoriesRoomScope(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)
	a.EnsureEmbeddingDimension(4)

	worldID := seedWorld(t, a)
	r1 := seedRoom(t, a, worldID)
	r2 := seedRoom(t, a, worldID)

	vec := []float32{1, 0, 0, 0}
	a.CreateMemory(ctx, &model.Memory{RoomID: r1, Content: map[string]any{"text": "in r1"}, Embedding: vec}, model.TableMessages)
	a.CreateMemory(ctx, &model.Memory{RoomID: r2, Content: map[string]any{"text": "in r2"}, Embedding: vec}, model.TableMessages)

	got, err := a.SearchMemories(ctx, SearchMemoriesParams{
		Embedding: vec,
		Count:     10,
		RoomID:    r1,
		TableName: model.TableMessages,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Text() != "in r1" {
		t.Errorf("expected only r1 memories, got %d", len(got))
	}
}

func TestEnsureEmbeddingDimensionReconfigures(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)
	a.EnsureEmbeddingDimension(4)

	worldID := seedWorld(t, a)
	roomID := seedRoom(t, a, worldID)

	oldID, err := a.CreateMemory(ctx, &model.Memory{
		RoomID:    roomID,
		Content:   map[string]any{"text": "old"},
		Embedding: []float32{1, 0, 0, 0},
	}, model.TableMessages)
	if err != nil {
		t.Fatalf("create old: %v", err)
	}

	if err := a.EnsureEmbeddingDimension(768); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}

	wide := make([]float32, 768)
	wide[0] = 1
	newID, err := a.CreateMemory(ctx, &model.Memory{
		RoomID:    roomID,
		Content:   map[string]any{"text": "new"},
		Embedding: wide,
	}, model.TableMessages)
	if err != nil {
		t.Fatalf("create new width: %v", err)
	}

	// Searching at the new width only compares same-width rows.
	got, err := a.SearchMemories(ctx, SearchMemoriesParams{
		Embedding: wide,
		Count:     10,
		RoomID:    roomID,
		TableName: model.TableMessages,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != newID {
		t.Fatalf("expected only the new-width memory, got %d results", len(got))
	}
	if len(got[0].Embedding) != 768 {
		t.Errorf("expected 768-dim vector back, got %d", len(got[0].Embedding))
	}

	// The old row survives reconfiguration untouched.
	old, err := a.GetMemoryByID(ctx, oldID)
	if err != nil {
		t.Fatalf("get old: %v", err)
	}
	if old == nil || len(old.Embedding) != 4 {
		t.Error("expected old memory and its 4-dim vector to survive")
	}
}

func TestDeleteDocumentCascadesFragments(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	worldID := seedWorld(t, a)
	roomID := seedRoom(t, a, worldID)

	docID, err := a.CreateMemory(ctx, &model.Memory{
		RoomID:  roomID,
		Content: map[string]any{"text": "full document"},
	}, model.TableDocuments)
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	var fragIDs []uuid.UUID
	for _, text := range []string{"part one", "part two"} {
		id, err := a.CreateMemory(ctx, &model.Memory{
			RoomID:   roomID,
			Content:  map[string]any{"text": text},
			Metadata: map[string]any{"documentId": docID.String(), "position": float64(len(fragIDs))},
		}, model.TableFragments)
		if err != nil {
			t.Fatalf("create fragment: %v", err)
		}
		fragIDs = append(fragIDs, id)
	}

	// An unrelated fragment must survive the cascade.
	otherID, _ := a.CreateMemory(ctx, &model.Memory{
		RoomID:   roomID,
		Content:  map[string]any{"text": "other"},
		Metadata: map[string]any{"documentId": uuid.New().String()},
	}, model.TableFragments)

	if err := a.DeleteMemory(ctx, docID); err != nil {
		t.Fatalf("delete document: %v", err)
	}

	for _, id := range fragIDs {
		got, _ := a.GetMemoryByID(ctx, id)
		if got != nil {
			t.Errorf("expected fragment %s to cascade", id)
		}
	}
	if got, _ := a.GetMemoryByID(ctx, otherID); got == nil {
		t.Error("expected unrelated fragment to survive")
	}
	if got, _ := a.GetMemoryByID(ctx, docID); got != nil {
		t.Error("expected document to be gone")
	}
}

func TestUpdateMemoryWholesale(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	worldID := seedWorld(t, a)
	roomID := seedRoom(t, a, worldID)

	id, _ := a.CreateMemory(ctx, &model.Memory{
		RoomID:   roomID,
		Content:  map[string]any{"text": "before", "keep": "me"},
		Metadata: map[string]any{"tag": "old"},
	}, model.TableMessages)

	ok, err := a.UpdateMemory(ctx, &model.Memory{
		ID:      id,
		Content: map[string]any{"text": "after"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("expected update to find the memory")
	}

	got, _ := a.GetMemoryByID(ctx, id)
	if got.Text() != "after" {
		t.Errorf("expected replaced content, got %q", got.Text())
	}
	if _, present := got.Content["keep"]; present {
		t.Error("expected content replaced wholesale, old key survived")
	}
	if got.Metadata != nil {
		t.Errorf("expected metadata replaced with absent, got %v", got.Metadata)
	}
}

func TestUpdateMemoryMissing(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	ok, err := a.UpdateMemory(ctx, &model.Memory{
		ID:      uuid.New(),
		Content: map[string]any{"text": "x"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok {
		t.Error("expected update of missing memory to report false")
	}
}

func TestDeleteAllMemoriesScoped(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	worldID := seedWorld(t, a)
	r1 := seedRoom(t, a, worldID)
	r2 := seedRoom(t, a, worldID)

	a.CreateMemory(ctx, &model.Memory{RoomID: r1, Content: map[string]any{"text": "m1"}}, model.TableMessages)
	a.CreateMemory(ctx, &model.Memory{RoomID: r1, Content: map[string]any{"text": "f1"}}, model.TableFacts)
	a.CreateMemory(ctx, &model.Memory{RoomID: r2, Content: map[string]any{"text": "m2"}}, model.TableMessages)

	if err := a.DeleteAllMemories(ctx, r1, model.TableMessages); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	if n, _ := a.CountMemories(ctx, r1, false, model.TableMessages); n != 0 {
		t.Errorf("expected r1 messages cleared, got %d", n)
	}
	if n, _ := a.CountMemories(ctx, r1, false, model.TableFacts); n != 1 {
		t.Errorf("expected r1 facts untouched, got %d", n)
	}
	if n, _ := a.CountMemories(ctx, r2, false, model.TableMessages); n != 1 {
		t.Errorf("expected r2 messages untouched, got %d", n)
	}
}

func TestGetMemoriesNewestFirst(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)

	worldID := seedWorld(t, a)
	roomID := seedRoom(t, a, worldID)

	a.CreateMemory(ctx, &model.Memory{RoomID: roomID, Content: map[string]any{"text": "first"}, CreatedAt: 1000}, model.TableMessages)
	a.CreateMemory(ctx, &model.Memory{RoomID: roomID, Content: map[string]any{"text": "second"}, CreatedAt: 2000}, model.TableMessages)

	got, err := a.GetMemories(ctx, GetMemoriesParams{RoomID: roomID, TableName: model.TableMessages})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 memories, got %d", len(got))
	}
	if got[0].Text() != "second" {
		t.Errorf("expected newest first, got %q", got[0].Text())
	}

	got, _ = a.GetMemories(ctx, GetMemoriesParams{RoomID: roomID, TableName: model.TableMessages, Count: 1})
	if len(got) != 1 {
		t.Errorf("expected limit of 1, got %d", len(got))
	}
}

package jsonmap

import (
	"reflect"
	"testing"
)

func TestMergeReplacesScalars(t *testing.T) {
	base := map[string]any{"a": "1", "b": "2"}
	got := Merge(base, map[string]any{"b": "3"})

	want := map[string]any{"a": "1", "b": "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMergeNullDeletesKey(t *testing.T) {
	base := map[string]any{"a": "1", "b": "2"}
	got := Merge(base, map[string]any{"a": nil})

	if _, ok := got["a"]; ok {
		t.Error("expected 'a' to be deleted")
	}
	if got["b"] != "2" {
		t.Errorf("sibling key disturbed: %v", got["b"])
	}
}

func TestMergeNestedNullDelete(t *testing.T) {
	base := map[string]any{
		"secrets": map[string]any{"A": "1", "B": "2"},
		"theme":   "dark",
	}
	got := Merge(base, map[string]any{
		"secrets": map[string]any{"A": nil},
	})

	secrets, ok := got["secrets"].(map[string]any)
	if !ok {
		t.Fatalf("secrets missing: %v", got)
	}
	if _, ok := secrets["A"]; ok {
		t.Error("expected secrets.A to be deleted")
	}
	if secrets["B"] != "2" {
		t.Errorf("expected secrets.B untouched, got %v", secrets["B"])
	}
	if got["theme"] != "dark" {
		t.Error("unrelated top-level key disturbed")
	}
}

func TestMergeDeepNesting(t *testing.T) {
	base := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": "keep", "d": "drop"},
		},
	}
	got := Merge(base, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"d": nil, "e": "new"},
		},
	})

	b := got["a"].(map[string]any)["b"].(map[string]any)
	if b["c"] != "keep" || b["e"] != "new" {
		t.Errorf("unexpected inner map: %v", b)
	}
	if _, ok := b["d"]; ok {
		t.Error("expected a.b.d to be deleted")
	}
}

func TestMergeListsReplaceWholesale(t *testing.T) {
	base := map[string]any{"tags": []any{"x", "y"}}
	got := Merge(base, map[string]any{"tags": []any{"z"}})

	want := []any{"z"}
	if !reflect.DeepEqual(got["tags"], want) {
		t.Errorf("got %v, want %v", got["tags"], want)
	}
}

func TestMergeNilBase(t *testing.T) {
	got := Merge(nil, map[string]any{"k": "v"})
	if got["k"] != "v" {
		t.Errorf("got %v", got)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": "1"}
	patch := map[string]any{"a": nil, "b": "2"}
	Merge(base, patch)

	if base["a"] != "1" {
		t.Error("base mutated")
	}
	if len(patch) != 2 {
		t.Error("patch mutated")
	}
}

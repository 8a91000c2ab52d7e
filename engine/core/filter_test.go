package deeprag

import (
	"reflect"
	"testing"
)

func TestConfigFilterScalarExactMatchOnly(t *testing.T) {
	filter, err := NewConfigFilter(map[string]string{
		"group_name": "physics_papers",
	}, nil)
	if err != nil {
		t.Fatalf("NewConfigFilter failed: %v", err)
	}

	doc := map[string]any{
		"name":         "group_name",
		"instructions": []any{"The group is named:", "group_name", "group_name is great"},
	}
	out := filter.Filter(doc).(map[string]any)

	if out["name"] != "physics_papers" {
		t.Errorf("Exact-match value not replaced: %v", out["name"])
	}
	instructions := out["instructions"].([]any)
	if instructions[1] != "physics_papers" {
		t.Errorf("Exact-match list element not replaced: %v", instructions[1])
	}
	if instructions[2] != "group_name is great" {
		t.Errorf("Substring should never be replaced, got %v", instructions[2])
	}
}

func TestConfigFilterStructuredReplacement(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []any{"inquiry"},
	}
	filter, err := NewConfigFilter(nil, map[string]any{
		"delegate_call_format": schema,
	})
	if err != nil {
		t.Fatalf("NewConfigFilter failed: %v", err)
	}

	doc := map[string]any{"args_schema": "delegate_call_format"}
	out := filter.Filter(doc).(map[string]any)

	replaced, ok := out["args_schema"].(map[string]any)
	if !ok {
		t.Fatalf("Structured key replaced with %T, expected a sub-document", out["args_schema"])
	}
	if !reflect.DeepEqual(replaced, schema) {
		t.Errorf("Sub-document mismatch: %v", replaced)
	}

	// The inserted sub-document must be a copy, not a shared reference.
	replaced["type"] = "mutated"
	if schema["type"] != "object" {
		t.Error("Replacement shared memory with the registered sub-document")
	}
}

func TestConfigFilterDoesNotMutateInput(t *testing.T) {
	filter, err := NewConfigFilter(map[string]string{"file_content": "hello"}, nil)
	if err != nil {
		t.Fatalf("NewConfigFilter failed: %v", err)
	}

	doc := map[string]any{"body": "file_content"}
	_ = filter.Filter(doc)
	if doc["body"] != "file_content" {
		t.Errorf("Input document mutated: %v", doc["body"])
	}
}

func TestConfigFilterIdempotent(t *testing.T) {
	filter, err := NewConfigFilter(
		map[string]string{"group_name": "alpha"},
		map[string]any{"delegate_call_format": map[string]any{"type": "object"}},
	)
	if err != nil {
		t.Fatalf("NewConfigFilter failed: %v", err)
	}

	doc := map[string]any{
		"name":   "group_name",
		"schema": "delegate_call_format",
	}
	once := filter.Filter(doc)
	twice := filter.Filter(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Filtering twice changed the document: %v vs %v", once, twice)
	}
}

func TestConfigFilterRejectsNamespaceOverlap(t *testing.T) {
	_, err := NewConfigFilter(
		map[string]string{"shared_key": "text"},
		map[string]any{"shared_key": map[string]any{}},
	)
	if err == nil {
		t.Fatal("Expected an error when a key is both scalar and structured")
	}
}

func TestCommonDefsFilterWithMergesScalars(t *testing.T) {
	defs := &CommonDefs{
		Scalars:    map[string]string{"delegate_instructions": "delegate carefully"},
		Structured: map[string]any{"delegate_call_format": map[string]any{"type": "object"}},
	}

	filter, err := defs.FilterWith(map[string]string{"group_name": "beta"})
	if err != nil {
		t.Fatalf("FilterWith failed: %v", err)
	}

	doc := []any{"group_name", "delegate_instructions", "delegate_call_format"}
	out := filter.Filter(doc).([]any)
	if out[0] != "beta" {
		t.Errorf("Per-build scalar not applied: %v", out[0])
	}
	if out[1] != "delegate carefully" {
		t.Errorf("Common scalar not applied: %v", out[1])
	}
	if _, ok := out[2].(map[string]any); !ok {
		t.Errorf("Common structured fragment not applied: %v", out[2])
	}
}

package deeprag

import (
	"testing"
)

func TestParseGroupingDocumentMappingForm(t *testing.T) {
	data := []byte(`{
		"name": "library",
		"description": "Two manuals",
		"groups": [{
			"name": "manuals",
			"description": "Product manuals",
			"files": {"b.txt": "agent_b", "a.txt": "agent_a"}
		}]
	}`)

	doc, err := ParseGroupingDocument(data)
	if err != nil {
		t.Fatalf("ParseGroupingDocument failed: %v", err)
	}
	if len(doc.Groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(doc.Groups))
	}

	// Mapping keys are ordered by sorted file name for determinism.
	bindings := doc.Groups[0].Files
	if len(bindings) != 2 {
		t.Fatalf("Expected 2 bindings, got %d", len(bindings))
	}
	if bindings[0].File != "a.txt" || bindings[0].Agent != "agent_a" {
		t.Errorf("Unexpected first binding: %+v", bindings[0])
	}
	if bindings[1].File != "b.txt" || bindings[1].Agent != "agent_b" {
		t.Errorf("Unexpected second binding: %+v", bindings[1])
	}
}

func TestParseGroupingDocumentPairListForm(t *testing.T) {
	data := []byte(`{
		"name": "library",
		"groups": [{
			"name": "manuals",
			"files": [
				{"file": "z.txt", "agent": "agent_z"},
				{"file": "a.txt", "agent": "agent_a"}
			]
		}]
	}`)

	doc, err := ParseGroupingDocument(data)
	if err != nil {
		t.Fatalf("ParseGroupingDocument failed: %v", err)
	}

	// Pair lists keep the author's order.
	bindings := doc.Groups[0].Files
	if bindings[0].File != "z.txt" || bindings[1].File != "a.txt" {
		t.Errorf("Pair-list order not preserved: %+v", bindings)
	}
}

func TestParseGroupingDocumentRejectsEmptyGroups(t *testing.T) {
	if _, err := ParseGroupingDocument([]byte(`{"name": "empty", "groups": []}`)); err == nil {
		t.Fatal("Expected an error for a document with no groups")
	}
}

func TestGroupDescriptorValidateRejectsDuplicates(t *testing.T) {
	g := GroupDescriptor{
		Name: "dup",
		Files: []ContentBinding{
			{File: "a.txt", Agent: "agent_a"},
			{File: "a.txt", Agent: "agent_a2"},
		},
	}
	if err := g.Validate(); err == nil {
		t.Fatal("Expected an error for a duplicate file binding")
	}
}

func TestGroupDescriptorValidateRejectsIncompleteBindings(t *testing.T) {
	g := GroupDescriptor{
		Name:  "partial",
		Files: []ContentBinding{{File: "a.txt"}},
	}
	if err := g.Validate(); err == nil {
		t.Fatal("Expected an error for a binding without an agent")
	}

	g = GroupDescriptor{
		Name:  "partial",
		Files: []ContentBinding{{Agent: "agent_a"}},
	}
	if err := g.Validate(); err == nil {
		t.Fatal("Expected an error for a binding without a file")
	}
}

func TestGroupDescriptorAgentNamesKeepBindingOrder(t *testing.T) {
	g := GroupDescriptor{
		Name: "ordered",
		Files: []ContentBinding{
			{File: "c.txt", Agent: "third"},
			{File: "a.txt", Agent: "first"},
		},
	}
	names := g.AgentNames()
	if names[0] != "third" || names[1] != "first" {
		t.Errorf("AgentNames reordered bindings: %v", names)
	}
}

package deeprag

import (
	"fmt"
	"testing"
)

type mapLoader map[string]string

func (m mapLoader) ReadText(path string) (string, error) {
	content, exists := m[path]
	if !exists {
		return "", fmt.Errorf("no such file %q", path)
	}
	return content, nil
}

func testTemplate() *NetworkTemplate {
	return &NetworkTemplate{spec: NetworkSpec{
		Name: "group_template",
		Tools: []ToolSpec{
			{
				"name": "front_man",
				"function": map[string]any{
					"description": "group_description",
				},
				"instructions": []any{
					"The group is named:",
					"group_name",
					"structure_description",
					"delegate_instructions",
				},
				"args_schema": "delegate_call_format",
				"tools":       []any{},
			},
			{
				"name": "content_agent_name",
				"instructions": []any{
					"Document text:",
					"file_content",
				},
			},
		},
	}}
}

func testDefs() *CommonDefs {
	return &CommonDefs{
		Scalars: map[string]string{
			"delegate_instructions": "Delegate to your tools and combine their answers.",
		},
		Structured: map[string]any{
			"delegate_call_format": map[string]any{"type": "object"},
		},
	}
}

func testAssembler(loader TextLoader) *NetworkAssembler {
	return NewNetworkAssembler(testTemplate(), testDefs(), loader)
}

func TestBuildLeafNetwork(t *testing.T) {
	loader := mapLoader{
		"a.txt": "alpha body",
		"b.txt": "beta body",
	}
	assembler := testAssembler(loader)

	descriptor := &GroupDescriptor{
		Name:        "manuals",
		Description: "Product manuals",
		Files: []ContentBinding{
			{File: "a.txt", Agent: "agent_a"},
			{File: "b.txt", Agent: "agent_b"},
		},
	}

	spec, err := assembler.BuildLeafNetwork(descriptor, "the manuals shelf")
	if err != nil {
		t.Fatalf("BuildLeafNetwork failed: %v", err)
	}

	if spec.Name != "manuals" {
		t.Errorf("Spec name = %q, expected manuals", spec.Name)
	}
	// Front-man plus one content node per file.
	if len(spec.Tools) != 3 {
		t.Fatalf("Expected 3 tools, got %d", len(spec.Tools))
	}

	frontMan := spec.FrontMan()
	subAgents, ok := frontMan["tools"].([]string)
	if !ok {
		t.Fatalf("Front-man tools has type %T", frontMan["tools"])
	}
	if len(subAgents) != 2 || subAgents[0] != "agent_a" || subAgents[1] != "agent_b" {
		t.Errorf("Front-man delegates to %v, expected [agent_a agent_b]", subAgents)
	}

	instructions := frontMan["instructions"].([]any)
	if instructions[1] != "manuals" {
		t.Errorf("group_name not substituted: %v", instructions[1])
	}
	if instructions[2] != "the manuals shelf" {
		t.Errorf("structure_description not substituted: %v", instructions[2])
	}
	if instructions[3] != "Delegate to your tools and combine their answers." {
		t.Errorf("Common scalar not substituted: %v", instructions[3])
	}
	if _, ok := frontMan["args_schema"].(map[string]any); !ok {
		t.Errorf("Structured fragment not substituted: %T", frontMan["args_schema"])
	}

	nodeA := spec.Tools[1]
	if nodeA.Name() != "agent_a" {
		t.Errorf("First content node named %q, expected agent_a", nodeA.Name())
	}
	contentsA := nodeA["instructions"].([]any)
	if contentsA[1] != "alpha body" {
		t.Errorf("File content not inlined: %v", contentsA[1])
	}
	nodeB := spec.Tools[2]
	if nodeB.Name() != "agent_b" {
		t.Errorf("Second content node named %q, expected agent_b", nodeB.Name())
	}
}

func TestBuildLeafNetworkMissingFile(t *testing.T) {
	assembler := testAssembler(mapLoader{})
	descriptor := &GroupDescriptor{
		Name:  "broken",
		Files: []ContentBinding{{File: "missing.txt", Agent: "agent_x"}},
	}
	if _, err := assembler.BuildLeafNetwork(descriptor, ""); err == nil {
		t.Fatal("Expected an error for an unreadable file")
	}
}

func TestBuildGroupNetwork(t *testing.T) {
	assembler := testAssembler(mapLoader{})
	descriptor := &GroupDescriptor{
		Name:        "document_collection",
		Description: "Everything",
	}
	addresses := []string{
		"http://localhost:8080/api/v1/networks/manuals-abc",
		"http://localhost:8080/api/v1/networks/reports-def",
	}

	spec, err := assembler.BuildGroupNetwork(descriptor, "top level", addresses)
	if err != nil {
		t.Fatalf("BuildGroupNetwork failed: %v", err)
	}

	// Group networks carry no content nodes, only the front-man.
	if len(spec.Tools) != 1 {
		t.Fatalf("Expected the front-man only, got %d tools", len(spec.Tools))
	}
	subAgents := spec.FrontMan()["tools"].([]string)
	if len(subAgents) != 2 || subAgents[0] != addresses[0] || subAgents[1] != addresses[1] {
		t.Errorf("Front-man delegates to %v, expected the child addresses in order", subAgents)
	}
}

func TestBuildGroupNetworkNeedsChildren(t *testing.T) {
	assembler := testAssembler(mapLoader{})
	descriptor := &GroupDescriptor{Name: "empty"}
	if _, err := assembler.BuildGroupNetwork(descriptor, "", nil); err == nil {
		t.Fatal("Expected an error for a group network with no children")
	}
}

func TestTemplateCloneIsolation(t *testing.T) {
	template := testTemplate()
	clone := template.Clone()
	clone.Tools[0]["name"] = "mutated"

	if template.spec.Tools[0].Name() != "front_man" {
		t.Error("Mutating a clone changed the template")
	}
}

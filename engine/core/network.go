package deeprag

import (
	"fmt"
	"os"

	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"
)

// TemplateFrontManIndex is the position of the front-man node in every
// network template's tools list.
const TemplateFrontManIndex = 0

// ToolSpec is one agent node of a network specification. It stays an open
// document so templates can carry arbitrary placeholder-bearing fields, but
// every node must at least have a string name.
type ToolSpec map[string]any

// Name returns the node's agent name, or "" when absent.
func (t ToolSpec) Name() string {
	return ToString(t["name"], "")
}

// SetSubAgents replaces the node's delegation list.
func (t ToolSpec) SetSubAgents(agents []string) {
	t["tools"] = agents
}

// NetworkSpec is a tree-shaped agent network specification: a front-man
// node at index 0 followed by its sub-agent nodes.
type NetworkSpec struct {
	Name  string     `yaml:"name" json:"name"`
	Tools []ToolSpec `yaml:"tools" json:"tools"`
}

// FrontMan returns the network's entry node.
func (n *NetworkSpec) FrontMan() ToolSpec {
	return n.Tools[TemplateFrontManIndex]
}

// NetworkTemplate is the immutable blueprint shared by all network builds.
// It is loaded once at process start; builds operate on clones only. The
// trailing tool entry is the content-node template consumed by leaf builds.
type NetworkTemplate struct {
	spec NetworkSpec
}

// LoadNetworkTemplate reads and validates a template document.
func LoadNetworkTemplate(path string) (*NetworkTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network template %s: %w", path, err)
	}

	var spec NetworkSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse network template %s: %w", path, err)
	}
	if err := validateTemplate(&spec); err != nil {
		return nil, fmt.Errorf("invalid network template %s: %w", path, err)
	}

	return &NetworkTemplate{spec: spec}, nil
}

func validateTemplate(spec *NetworkSpec) error {
	// A usable template needs a front-man and a trailing content-node
	// template at minimum.
	if len(spec.Tools) < 2 {
		return fmt.Errorf("template must have a front-man and a content-node template, got %d tools", len(spec.Tools))
	}
	for i, tool := range spec.Tools {
		if tool.Name() == "" {
			return fmt.Errorf("template tool %d has no name", i)
		}
	}
	return nil
}

// Clone returns a deep copy of the template spec that a build may mutate
// freely.
func (t *NetworkTemplate) Clone() *NetworkSpec {
	clone := deepcopy.Copy(t.spec).(NetworkSpec)
	return &clone
}

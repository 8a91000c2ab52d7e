package deeprag

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ContentBinding ties one source file to the name of the content agent that
// will sponsor its text.
type ContentBinding struct {
	File  string `json:"file" yaml:"file"`
	Agent string `json:"agent" yaml:"agent"`
}

// GroupDescriptor describes one analyzed group of files: a name, a
// human-readable description and the ordered file-to-agent bindings.
// Produced by the analysis collaborator, consumed by the network assembler.
type GroupDescriptor struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Files       []ContentBinding `json:"files" yaml:"files"`
}

// Validate checks the fields a leaf network build requires.
func (g *GroupDescriptor) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("group descriptor is missing a name")
	}
	if len(g.Files) == 0 {
		return fmt.Errorf("group descriptor %q has no file bindings", g.Name)
	}
	seen := make(map[string]bool, len(g.Files))
	for _, binding := range g.Files {
		if binding.File == "" || binding.Agent == "" {
			return fmt.Errorf("group descriptor %q has an incomplete file binding %+v", g.Name, binding)
		}
		if seen[binding.File] {
			return fmt.Errorf("group descriptor %q binds file %q twice", g.Name, binding.File)
		}
		seen[binding.File] = true
	}
	return nil
}

// AgentNames returns the content agent names in binding order.
func (g *GroupDescriptor) AgentNames() []string {
	names := make([]string, 0, len(g.Files))
	for _, binding := range g.Files {
		names = append(names, binding.Agent)
	}
	return names
}

// GroupingDocument is the full result of one analysis pass: an overall
// structure description plus one descriptor per discovered group.
type GroupingDocument struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Groups      []GroupDescriptor `json:"groups" yaml:"groups"`
}

// Validate checks that the document carries at least one well-formed group.
func (d *GroupingDocument) Validate() error {
	if len(d.Groups) == 0 {
		return fmt.Errorf("grouping document %q has no groups", d.Name)
	}
	for i := range d.Groups {
		if err := d.Groups[i].Validate(); err != nil {
			return fmt.Errorf("grouping document %q: %w", d.Name, err)
		}
	}
	return nil
}

// rawGroupDescriptor accepts the two file-binding shapes analysis tools have
// produced: a file->agent mapping, or a list of {file, agent} pairs.
type rawGroupDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Files       json.RawMessage `json:"files"`
}

type rawGroupingDocument struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Groups      []rawGroupDescriptor `json:"groups"`
}

// ParseGroupingDocument decodes an analysis tool's JSON output into a
// validated GroupingDocument. File bindings given as a JSON mapping are
// ordered by sorted file name so that every parse of the same document
// yields the same agent order.
func ParseGroupingDocument(data []byte) (*GroupingDocument, error) {
	var raw rawGroupingDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse grouping document: %w", err)
	}

	doc := &GroupingDocument{
		Name:        raw.Name,
		Description: raw.Description,
		Groups:      make([]GroupDescriptor, 0, len(raw.Groups)),
	}
	for _, rawGroup := range raw.Groups {
		bindings, err := parseFileBindings(rawGroup.Files)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", rawGroup.Name, err)
		}
		doc.Groups = append(doc.Groups, GroupDescriptor{
			Name:        rawGroup.Name,
			Description: rawGroup.Description,
			Files:       bindings,
		})
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseFileBindings(data json.RawMessage) ([]ContentBinding, error) {
	if len(data) == 0 {
		return nil, nil
	}

	// Mapping form: {"a.txt": "agent_a", ...}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err == nil {
		files := make([]string, 0, len(mapping))
		for file := range mapping {
			files = append(files, file)
		}
		sort.Strings(files)
		bindings := make([]ContentBinding, 0, len(files))
		for _, file := range files {
			bindings = append(bindings, ContentBinding{File: file, Agent: mapping[file]})
		}
		return bindings, nil
	}

	// Pair-list form: [{"file": "a.txt", "agent": "agent_a"}, ...]
	var pairs []ContentBinding
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("file bindings are neither a mapping nor a pair list: %w", err)
	}
	return pairs, nil
}

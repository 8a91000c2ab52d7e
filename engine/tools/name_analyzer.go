package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	deeprag "deeprag/engine/core"
)

// NameAnalyzerTool is the default analysis collaborator. It derives a
// grouping document purely from file names: one group holding every file
// in the list, with one content agent per file named after its base name.
// Deployments that have a semantic classifier register it over this name.
type NameAnalyzerTool struct{}

func NewNameAnalyzerTool() *NameAnalyzerTool {
	return &NameAnalyzerTool{}
}

func (t *NameAnalyzerTool) Name() string {
	return "name_analyzer"
}

func (t *NameAnalyzerTool) Invoke(ctx context.Context, args map[string]any, sly *deeprag.SideChannel) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	files := deeprag.ToStringSlice(args["file_list"], nil)
	if len(files) == 0 {
		return "", fmt.Errorf("name analyzer needs a non-empty file_list")
	}

	description := deeprag.ToString(args["user_description"], "")
	if description == "" {
		description = fmt.Sprintf("Collection of %d documents", len(files))
	}

	group := deeprag.GroupDescriptor{
		Name:        groupNameForFiles(files),
		Description: description,
	}
	for _, file := range files {
		group.Files = append(group.Files, deeprag.ContentBinding{
			File:  file,
			Agent: agentNameForFile(file),
		})
	}

	doc := &deeprag.GroupingDocument{
		Name:        group.Name,
		Description: description,
		Groups:      []deeprag.GroupDescriptor{group},
	}
	if err := doc.Validate(); err != nil {
		return "", err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode grouping document: %w", err)
	}
	return string(out), nil
}

// groupNameForFiles names the group after the files' shared directory,
// falling back to "documents" when they share none.
func groupNameForFiles(files []string) string {
	dir := filepath.Dir(files[0])
	for _, file := range files[1:] {
		if filepath.Dir(file) != dir {
			return "documents"
		}
	}
	if dir == "." || dir == "/" || dir == "" {
		return "documents"
	}
	return deeprag.SanitizeNameHint(filepath.Base(dir))
}

// agentNameForFile turns a file path into an identifier-safe agent name.
func agentNameForFile(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "document"
	}
	return name + "_agent"
}

package deeprag

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TextLoader reads the raw text of one source document. File reading is a
// collaborator concern; the assembler only consumes the returned string.
type TextLoader interface {
	ReadText(path string) (string, error)
}

// DirLoader resolves relative paths against a base directory and reads
// files as UTF-8 text.
type DirLoader struct {
	// Root is prefixed to every relative path. Absolute paths are used
	// verbatim.
	Root string
}

// ReadText implements TextLoader.
func (l *DirLoader) ReadText(path string) (string, error) {
	full := path
	if !filepath.IsAbs(path) && l.Root != "" {
		full = filepath.Join(l.Root, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", full, err)
	}
	return string(data), nil
}

// ListTextFiles returns the sorted relative names of the .txt files directly
// under dir. Used as the default file list when a caller supplies only a
// files directory.
func ListTextFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list files directory %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

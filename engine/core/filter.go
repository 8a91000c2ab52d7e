package deeprag

import (
	"fmt"
	"os"

	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"
)

// ConfigFilter applies placeholder substitutions to a specification
// document. Two passes run in order over a cloned document tree:
//
//  1. scalar pass: every string value that exactly matches a registered
//     scalar key is replaced by the key's string value
//  2. structured pass: every string value that exactly matches a
//     registered structured key is replaced by a copy of the key's
//     sub-document
//
// The two key namespaces must never overlap; that is what makes the passes
// idempotent and order-independent with respect to each other.
type ConfigFilter struct {
	scalars    map[string]string
	structured map[string]any
}

// NewConfigFilter builds a filter from the two replacement sets, rejecting
// any key registered in both.
func NewConfigFilter(scalars map[string]string, structured map[string]any) (*ConfigFilter, error) {
	for key := range structured {
		if _, clash := scalars[key]; clash {
			return nil, fmt.Errorf("placeholder key %q registered as both scalar and structured", key)
		}
	}
	return &ConfigFilter{scalars: scalars, structured: structured}, nil
}

// Filter returns a filtered deep copy of the document. The input document
// is never mutated.
func (f *ConfigFilter) Filter(doc any) any {
	out := deepcopy.Copy(doc)
	out = f.applyScalars(out)
	out = f.applyStructured(out)
	return out
}

func (f *ConfigFilter) applyScalars(node any) any {
	return walkReplace(node, func(s string) (any, bool) {
		if replacement, ok := f.scalars[s]; ok {
			return replacement, true
		}
		return nil, false
	})
}

func (f *ConfigFilter) applyStructured(node any) any {
	return walkReplace(node, func(s string) (any, bool) {
		if replacement, ok := f.structured[s]; ok {
			return deepcopy.Copy(replacement), true
		}
		return nil, false
	})
}

// walkReplace visits every value in a nested map/slice document and offers
// each string to the replace callback.
func walkReplace(node any, replace func(string) (any, bool)) any {
	switch v := node.(type) {
	case string:
		if replacement, ok := replace(v); ok {
			return replacement
		}
		return v
	case map[string]any:
		for key, val := range v {
			v[key] = walkReplace(val, replace)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = walkReplace(val, replace)
		}
		return v
	case []string:
		// yaml decodes string lists as []any, but hand-built documents may
		// carry []string; widen so replacements can change element types.
		widened := make([]any, len(v))
		for i, s := range v {
			widened[i] = walkReplace(s, replace)
		}
		return widened
	default:
		return v
	}
}

// CommonDefs is the shared, read-only definitions document loaded once at
// startup. Its scalar fragments (how to delegate work) and structured
// fragments (how to format a delegation call) are folded into every
// front-man substitution set.
type CommonDefs struct {
	Scalars    map[string]string `yaml:"scalars"`
	Structured map[string]any    `yaml:"structured"`
}

// LoadCommonDefs reads the definitions document from disk.
func LoadCommonDefs(path string) (*CommonDefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read common defs %s: %w", path, err)
	}
	var defs CommonDefs
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse common defs %s: %w", path, err)
	}
	if defs.Scalars == nil {
		defs.Scalars = map[string]string{}
	}
	if defs.Structured == nil {
		defs.Structured = map[string]any{}
	}
	return &defs, nil
}

// FilterWith builds a ConfigFilter combining the given scalar replacements
// with the common definition fragments.
func (d *CommonDefs) FilterWith(scalars map[string]string) (*ConfigFilter, error) {
	merged := make(map[string]string, len(scalars)+len(d.Scalars))
	for key, val := range d.Scalars {
		merged[key] = val
	}
	for key, val := range scalars {
		merged[key] = val
	}
	return NewConfigFilter(merged, d.Structured)
}

// Package tools hosts the coded tools that drive the document-network
// pipeline: partitioning, per-group analysis and network creation. Tools
// exchange out-of-band state through the side channel rather than their
// string results.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	deeprag "deeprag/engine/core"
)

// Tool is one invokable unit. Args carry the caller's parameters; the side
// channel carries state that must not appear in the returned text.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, args map[string]any, sly *deeprag.SideChannel) (string, error)
}

// Registry resolves tool names to implementations. Pipeline tools look up
// their collaborators here, so rebinding a name swaps the collaborator
// without touching the pipeline.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its own name. Re-registering a name replaces
// the previous binding.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns the tool bound to name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("no tool registered under %q", name)
	}
	return t, nil
}

// Names lists the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

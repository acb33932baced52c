// Package tools defines the tool interface and the registry used to expose
// callable functions to the model.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sreevatsan/storysmith/internal/types"
)

// Tool is a callable function with a name and description exposed to the
// model for structured invocation. The description is what the model reasons
// over when selecting a tool.
type Tool interface {
	Name() string
	Description() string

	// Schema describes the tool's input parameters.
	Schema() *jsonschema.Schema

	// Call executes the tool with already-validated arguments.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Definition is the provider-agnostic shape bound to a chat client.
type Definition struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Registry holds tools with unique names.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry with the given tools.
func NewRegistry(ts ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Empty or duplicate names are rejected.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("duplicate tool name %q", name)
	}
	r.tools[name] = t
	return nil
}

// Get returns a tool by exact name match.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns registered tool names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the shapes to bind to a chat client.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.tools))
	for _, name := range r.List() {
		t := r.tools[name]
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	return defs
}

// Call resolves a tool by name, validates the arguments against its schema
// and executes it. An unregistered name returns types.ErrUnknownTool.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", types.ErrUnknownTool, name)
	}
	if s := t.Schema(); s != nil {
		resolved, err := s.Resolve(nil)
		if err != nil {
			return "", fmt.Errorf("resolve schema for %q: %w", name, err)
		}
		if err := resolved.Validate(args); err != nil {
			return "", fmt.Errorf("arguments for %q: %w", name, err)
		}
	}
	return t.Call(ctx, args)
}

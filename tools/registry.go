package tools

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidTool   = errors.New("invalid tool definition")
)

// Registry maps tool names to definitions, in registration order.
// It is immutable once built.
type Registry struct {
	defs *orderedmap.OrderedMap[string, ToolDefinition]
}

// NewRegistry validates defs and builds a Registry. Names outside the closed
// Name set, missing handlers and duplicates are rejected here rather than at
// call time.
func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	m := orderedmap.New[string, ToolDefinition]()
	for _, d := range defs {
		if d.Name == "" || d.Function == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTool, d.Name)
		}
		if !Name(d.Name).Known() {
			return nil, fmt.Errorf("%w: %q is not a built-in tool", ErrUnknownTool, d.Name)
		}
		if _, present := m.Set(d.Name, d); present {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, d.Name)
		}
	}
	return &Registry{defs: m}, nil
}

// Lookup returns the definition registered under name (exact match).
func (r *Registry) Lookup(name string) (ToolDefinition, error) {
	if r == nil {
		return ToolDefinition{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	d, ok := r.defs.Get(name)
	if !ok {
		return ToolDefinition{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return d, nil
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	if r == nil {
		return nil
	}
	out := make([]ToolDefinition, 0, r.defs.Len())
	for p := r.defs.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, r.defs.Len())
	for p := r.defs.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.defs.Len()
}

// Default returns the fixed three-tool registry: arxiv, wikipedia, search.
func Default(opts Options) *Registry {
	opts = opts.withDefaults()
	r, err := NewRegistry(
		NewArxiv(opts).Definition(),
		NewWikipedia(opts).Definition(),
		NewSearch(opts).Definition(),
	)
	if err != nil {
		// Built-in definitions are static; failing here is a programming error.
		panic(err)
	}
	return r
}

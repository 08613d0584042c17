package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrDuplicateTool is returned when a tool name is registered twice.
var ErrDuplicateTool = errors.New("tool already registered")

type registered struct {
	tool     Tool
	resolved *jsonschema.Resolved
}

// Registry holds all registered tools
type Registry struct {
	tools map[string]*registered
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*registered),
	}
}

// Register adds a tool to the registry. The tool's schema is resolved once here
// so every call can be validated before it reaches the handler.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return errors.New("tool name is empty")
	}

	var resolved *jsonschema.Resolved
	if s := tool.Schema(); s != nil {
		var err error
		resolved, err = s.Resolve(nil)
		if err != nil {
			return fmt.Errorf("resolve schema for %s: %w", name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = &registered{tool: tool, resolved: resolved}
	return nil
}

// Get returns a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return t.tool, true
}

// Has returns true if a tool with the given name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// List returns all registered tool names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tools returns all registered tools, sorted by name
func (r *Registry) Tools() []Tool {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			out = append(out, t.tool)
		}
	}
	return out
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute validates params against the tool's schema and runs it.
// Unknown tools, invalid params and handler panics all come back as error envelopes.
func (r *Registry) Execute(ctx context.Context, name, sessionID string, params json.RawMessage) (res Result) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return Err(fmt.Sprintf("Unknown tool: %s", name))
	}

	if err := validate(t.resolved, params); err != nil {
		return Err(fmt.Sprintf("Invalid parameters for %s: %v", name, err))
	}

	defer func() {
		if p := recover(); p != nil {
			slog.Error("tool panicked",
				slog.String("tool", name),
				slog.String("session", sessionID),
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())))
			res = Err(fmt.Sprintf("Tool %s failed unexpectedly: %v", name, p))
		}
	}()

	slog.Debug("tool call", slog.String("tool", name), slog.String("session", sessionID))
	res = t.tool.Execute(ctx, sessionID, params)
	if res.IsError {
		slog.Debug("tool returned error", slog.String("tool", name), slog.String("result", res.Text()))
	}
	return res
}

// validate checks params against a resolved schema. Empty params validate as {}.
func validate(resolved *jsonschema.Resolved, params json.RawMessage) error {
	if resolved == nil {
		return nil
	}
	var instance any = map[string]any{}
	if len(params) > 0 && string(params) != "null" {
		if err := json.Unmarshal(params, &instance); err != nil {
			return fmt.Errorf("params are not valid JSON: %w", err)
		}
	}
	return resolved.Validate(instance)
}

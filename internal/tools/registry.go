package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cloudwego/eino/components/tool"

	"github.com/MEKXH/toolgate/internal/gate"
)

// Registry manages tools by name and keeps registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]tool.InvokableTool
	order []string
}

// NewRegistry creates a new registry
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]tool.InvokableTool)}
}

// Register adds a tool to registry
func (r *Registry) Register(t tool.InvokableTool) error {
	info, err := t.Info(context.Background())
	if err != nil {
		return err
	}
	if info == nil || info.Name == "" {
		return fmt.Errorf("tool info missing name")
	}
	return r.add(info.Name, t)
}

func (r *Registry) add(name string, t tool.InvokableTool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (tool.InvokableTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// List returns all tools in registration order.
func (r *Registry) List() []tool.InvokableTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]tool.InvokableTool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Execute runs the named tool with JSON arguments.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}
	return t.InvokableRun(ctx, argsJSON)
}

// Gate returns a new registry whose tools pass through interceptor. Tools
// the interceptor leaves unwrapped are carried over as-is; r is unchanged.
func (r *Registry) Gate(interceptor *gate.Interceptor) *Registry {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	originals := make([]tool.InvokableTool, len(names))
	actions := make([]gate.Action, len(names))
	for i, name := range names {
		originals[i] = r.tools[name]
		actions[i] = &toolAction{name: name, tool: originals[i]}
	}
	r.mu.RUnlock()

	wrapped := interceptor.WrapAll(actions)

	gated := NewRegistry()
	for i, name := range names {
		t := originals[i]
		if wrapped[i] != actions[i] {
			t = FromAction(wrapped[i], originals[i])
		}
		// Names are unique in r, so add cannot fail.
		_ = gated.add(name, t)
	}
	return gated
}

// Instrument returns a new registry whose tools log their sanitized
// arguments and results to logger. A tool whose info can no longer be read
// is carried over unlogged.
func (r *Registry) Instrument(ctx context.Context, logger *slog.Logger) *Registry {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	originals := make([]tool.InvokableTool, len(names))
	for i, name := range names {
		originals[i] = r.tools[name]
	}
	r.mu.RUnlock()

	instrumented := NewRegistry()
	for i, name := range names {
		t := originals[i]
		if a, err := AsAction(ctx, t); err == nil && a.Name() == name {
			t = FromAction(gate.Instrument(a, logger), originals[i])
		}
		_ = instrumented.add(name, t)
	}
	return instrumented
}

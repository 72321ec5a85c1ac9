package tools

import (
	"context"
	"strings"

	"github.com/MEKXH/toolgate/internal/sanitize"
)

type invocationContextKey struct{}

// InvocationContext carries caller metadata for tool execution.
type InvocationContext struct {
	RequestID string
	ThreadID  string
	AgentName string
}

// WithInvocationContext stores invocation metadata in context for tools.
func WithInvocationContext(ctx context.Context, meta InvocationContext) context.Context {
	return context.WithValue(ctx, invocationContextKey{}, meta)
}

// InvocationFromContext reads invocation metadata from context.
func InvocationFromContext(ctx context.Context) InvocationContext {
	meta, ok := ctx.Value(invocationContextKey{}).(InvocationContext)
	if !ok {
		return InvocationContext{}
	}
	meta.RequestID = strings.TrimSpace(meta.RequestID)
	meta.ThreadID = strings.TrimSpace(meta.ThreadID)
	meta.AgentName = strings.TrimSpace(meta.AgentName)
	return meta
}

// LogAttrs returns the non-empty fields as sanitized slog key/value pairs.
func (m InvocationContext) LogAttrs() []any {
	attrs := make([]any, 0, 6)
	if m.RequestID != "" {
		attrs = append(attrs, "request_id", sanitize.Identifier(m.RequestID))
	}
	if m.ThreadID != "" {
		attrs = append(attrs, "thread_id", sanitize.ThreadID(m.ThreadID))
	}
	if m.AgentName != "" {
		attrs = append(attrs, "agent", sanitize.AgentName(m.AgentName))
	}
	return attrs
}

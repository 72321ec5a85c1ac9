package gate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MEKXH/toolgate/internal/approval"
	"github.com/MEKXH/toolgate/internal/sanitize"
)

// Interceptor wraps actions so that policy-selected ones wait for approval.
type Interceptor struct {
	policy    Policy
	suspender Suspender
	parser    approval.Parser
	timeout   time.Duration
	logger    *slog.Logger
	recorder  Recorder
}

// Recorder observes gate outcomes. err in RecordDecision means the
// suspension failed before a decision arrived.
type Recorder interface {
	RecordDecision(wait time.Duration, approved bool, err error)
	RecordExecution(duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordDecision(time.Duration, bool, error) {}
func (noopRecorder) RecordExecution(time.Duration, error) {}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithParser replaces the default approval parser.
func WithParser(p approval.Parser) Option {
	return func(i *Interceptor) { i.parser = p }
}

// WithTimeout bounds the wait for a decision. Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(i *Interceptor) { i.timeout = d }
}

// WithLogger sets the logger used for gate events.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interceptor) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithRecorder reports suspension and execution outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(i *Interceptor) {
		if r != nil {
			i.recorder = r
		}
	}
}

// NewInterceptor creates an interceptor for policy p that suspends through s.
func NewInterceptor(p Policy, s Suspender, opts ...Option) *Interceptor {
	i := &Interceptor{
		policy:    p,
		suspender: s,
		logger:    slog.Default(),
		recorder:  noopRecorder{},
	}
	for _, opt := range opts {
		opt(i)
	}
	i.parser = i.parser.WithLogger(i.logger)
	return i
}

// ShouldIntercept reports whether name is gated by the policy.
func (i *Interceptor) ShouldIntercept(name string) bool {
	if i.policy == nil {
		return false
	}
	gated := i.policy.ShouldIntercept(name)
	if gated {
		i.logger.Info("tool marked for interrupt", "tool", sanitize.ToolName(name))
	}
	return gated
}

// Wrap returns a new action that consults the policy on every call. The
// original action is not modified.
func (i *Interceptor) Wrap(a Action) (Action, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	name := a.Name()
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidAction)
	}

	i.logger.Debug("wrapping tool with interrupt capability", "tool", sanitize.ToolName(name))
	return &gatedAction{
		name:        name,
		inner:       a,
		interceptor: i,
	}, nil
}

type gatedAction struct {
	name        string
	inner       Action
	interceptor *Interceptor
}

func (g *gatedAction) Name() string { return g.name }

// Unwrap returns the decorated action.
func (g *gatedAction) Unwrap() Action { return g.inner }

func (g *gatedAction) Invoke(ctx context.Context, input any) (any, error) {
	i := g.interceptor
	safeName := sanitize.ToolName(g.name)
	pending := newPending(g.name, input)
	i.logger.Debug("executing tool", "tool", safeName, "input", pending.SafeInput)

	if !i.ShouldIntercept(g.name) {
		return g.execute(ctx, input, safeName)
	}

	i.logger.Info("interrupting before tool", "tool", safeName)
	start := time.Now()
	decision, err := i.suspend(ctx, pending)
	if err != nil {
		i.recorder.RecordDecision(time.Since(start), false, err)
		i.logger.Error("suspension failed", "tool", safeName, "error", sanitize.Value(err, sanitize.DefaultMaxLength))
		return nil, err
	}
	i.logger.Debug("suspension returned", "tool", safeName, "decision", sanitize.Feedback(decision))

	approved := i.parser.Approved(decision)
	i.recorder.RecordDecision(time.Since(start), approved, nil)
	i.logger.Info("tool approval decision", "tool", safeName, "approved", approved)
	if !approved {
		i.logger.Warn("user rejected tool execution", "tool", safeName)
		return NewRejection(g.name), nil
	}

	i.logger.Info("user approved tool execution, proceeding", "tool", safeName)
	return g.execute(ctx, input, safeName)
}

func (g *gatedAction) execute(ctx context.Context, input any, safeName string) (any, error) {
	logger := g.interceptor.logger
	logger.Debug("calling original tool", "tool", safeName)

	start := time.Now()
	result, err := g.inner.Invoke(ctx, input)
	g.interceptor.recorder.RecordExecution(time.Since(start), err)
	if err != nil {
		logger.Error("tool execution failed", "tool", safeName, "error", sanitize.Value(err, sanitize.DefaultMaxLength))
		return result, err
	}

	logger.Debug("tool execution completed", "tool", safeName, "result_length", resultLength(result))
	return result, nil
}

func (i *Interceptor) suspend(ctx context.Context, pending Pending) (string, error) {
	if i.suspender == nil {
		return "", fmt.Errorf("suspend tool %q: %w", pending.ActionName, ErrNoSuspender)
	}
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	return i.suspender.Suspend(ctx, pending.Message())
}

func resultLength(result any) int {
	if s, ok := result.(string); ok {
		return len(s)
	}
	return len(fmt.Sprint(result))
}

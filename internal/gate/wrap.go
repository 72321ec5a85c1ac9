package gate

import (
	"fmt"

	"github.com/MEKXH/toolgate/internal/policy"
	"github.com/MEKXH/toolgate/internal/sanitize"
)

// WrapAll gates the actions named in interruptBefore. With no names the
// input slice is returned as-is.
func WrapAll(actions []Action, interruptBefore []string, s Suspender, opts ...Option) []Action {
	p := policy.NewEvaluator(policy.Config{RequireApproval: interruptBefore})
	return NewInterceptor(p, s, opts...).WrapAll(actions)
}

// WrapAll wraps every action, keeping order. An action that fails to wrap is
// kept unwrapped and the rest of the batch continues.
func (i *Interceptor) WrapAll(actions []Action) []Action {
	if !i.enabled() {
		i.logger.Debug("no tool interrupts configured, returning tools as-is")
		return actions
	}

	i.logger.Info("wrapping tools with interrupt logic", "count", len(actions))
	wrapped := make([]Action, 0, len(actions))
	for _, a := range actions {
		w, err := i.wrapSafely(a)
		if err != nil {
			i.logger.Error("failed to wrap tool", "tool", sanitize.ToolName(safeActionName(a)), "error", sanitize.Value(err, sanitize.DefaultMaxLength))
			wrapped = append(wrapped, a)
			continue
		}
		wrapped = append(wrapped, w)
	}
	i.logger.Info("wrapped tools", "count", len(wrapped))
	return wrapped
}

func (i *Interceptor) enabled() bool {
	if i.policy == nil {
		return false
	}
	if e, ok := i.policy.(interface{ Enabled() bool }); ok {
		return e.Enabled()
	}
	return true
}

func (i *Interceptor) wrapSafely(a Action) (w Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("%w: panic while wrapping: %v", ErrInvalidAction, r)
		}
	}()
	return i.Wrap(a)
}

func safeActionName(a Action) (name string) {
	defer func() {
		if recover() != nil {
			name = "<unknown>"
		}
	}()
	if a == nil {
		return "<nil>"
	}
	return a.Name()
}

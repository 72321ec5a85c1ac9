package gate

import (
	"context"
	"log/slog"

	"github.com/MEKXH/toolgate/internal/sanitize"
)

type loggedAction struct {
	inner  Action
	logger *slog.Logger
}

// Instrument returns an action that logs the sanitized input and result of
// every call to a.
func Instrument(a Action, logger *slog.Logger) Action {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggedAction{inner: a, logger: logger}
}

func (l *loggedAction) Name() string { return l.inner.Name() }

// Unwrap returns the decorated action.
func (l *loggedAction) Unwrap() Action { return l.inner }

func (l *loggedAction) Invoke(ctx context.Context, input any) (any, error) {
	name := sanitize.ToolName(l.inner.Name())
	l.logger.Debug("tool called", "tool", name, "input", sanitize.Value(FormatInput(input), sanitize.DefaultMaxLength))

	result, err := l.inner.Invoke(ctx, input)
	if err != nil {
		l.logger.Error("tool failed", "tool", name, "error", sanitize.Value(err, sanitize.DefaultMaxLength))
		return result, err
	}

	l.logger.Debug("tool returned", "tool", name, "result", sanitize.Value(result, sanitize.DefaultMaxLength))
	return result, nil
}

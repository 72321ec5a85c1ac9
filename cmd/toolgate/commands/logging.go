package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MEKXH/toolgate/internal/config"
)

// logSink owns the log file between invocations of the root command, so a
// test or embedding program that executes it repeatedly reuses one handle.
type logSink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

var sink logSink

// open returns the writer for path, or stderr when path is empty. A file
// opened for a different path is closed first.
func (s *logSink) open(path string) (io.Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil && s.path != path {
		_ = s.file.Close()
		s.file, s.path = nil, ""
	}
	if path == "" {
		return os.Stderr, nil
	}
	if s.file != nil {
		return s.file, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	s.file, s.path = f, path
	return f, nil
}

// configureLogger installs the process-wide logger described by cfg.Log.
// A non-empty overrideLevel wins over the configured level.
func configureLogger(cfg *config.Config, overrideLevel string) error {
	level, err := parseLogLevel(cfg.Log.Level, overrideLevel)
	if err != nil {
		return err
	}
	w, err := sink.open(strings.TrimSpace(cfg.Log.File))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(newLogHandler(w, cfg.Log.Format, level)))
	return nil
}

func newLogHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

var logLevels = map[string]slog.Level{
	"":        slog.LevelInfo,
	"info":    slog.LevelInfo,
	"debug":   slog.LevelDebug,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func parseLogLevel(configLevel, override string) (slog.Level, error) {
	name := configLevel
	if strings.TrimSpace(override) != "" {
		name = override
	}
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid log level: %s", strings.TrimSpace(name))
	}
	return level, nil
}

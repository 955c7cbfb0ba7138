package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LogFileName is the name of the log file inside the configured log dir.
const LogFileName = "moin2git.log"

// logSink is one destination of a logHandler with its minimum level.
type logSink struct {
	w   io.Writer
	min slog.Level
}

// logHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<runID>\t<message>\t<key=value ...>
//
// and writes each record to every sink whose level it meets.
type logHandler struct {
	mu    *sync.Mutex
	sinks []logSink
	runID string
	attrs []slog.Attr
}

func newLogHandler(runID string, sinks ...logSink) *logHandler {
	return &logHandler{mu: &sync.Mutex{}, sinks: sinks, runID: runID}
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if level >= s.min {
			return true
		}
	}
	return false
}

func (h *logHandler) Handle(_ context.Context, r slog.Record) error {
	line := h.format(r)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.sinks {
		if r.Level < s.min {
			continue
		}
		if _, err := io.WriteString(s.w, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *logHandler) format(r slog.Record) string {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	line := fmt.Sprintf("%s\t%s\t%s\t%s", ts, r.Level.String(), h.runID, r.Message)

	for _, a := range h.attrs {
		line += fmt.Sprintf("\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf("\t%s=%v", a.Key, a.Value)
		return true
	})
	return line + "\n"
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logHandler{
		mu:    h.mu,
		sinks: h.sinks,
		runID: h.runID,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *logHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes every level to
// logDir/moin2git.log. When console is non-nil, records at Info and above
// are mirrored to it.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir, runID string, console io.Writer) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	sinks := []logSink{{w: f, min: slog.LevelDebug}}
	if console != nil {
		sinks = append(sinks, logSink{w: console, min: slog.LevelInfo})
	}
	return slog.New(newLogHandler(runID, sinks...)), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the wiki.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

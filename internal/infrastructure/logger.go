package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fusiondash/internal/config"
)

var (
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once

	// logFile is the file opened by the most recent NewLogger call, if any.
	logFile struct {
		sync.Mutex
		f *os.File
	}
)

type contextKey string

// TraceIDContextKey is the context key carrying the trace ID that every log
// record emitted with that context is tagged with.
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the process logger once and installs it as the
// slog default.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		globalLogger, err = NewLogger(cfg, os.Stdout)
		if globalLogger != nil {
			slog.SetDefault(globalLogger)
		}
	})
	return globalLogger, err
}

// GetLogger returns the process logger, or slog.Default before
// InitializeLogger has run.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// NewLogger builds a logger writing JSON (or text, for terminals) to the
// console, to cfg.FilePath, or to both.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	out := console
	if mode := strings.ToLower(cfg.Output); mode == "file" || mode == "both" {
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		swapLogFile(f)
		out = f
		if mode == "both" {
			out = io.MultiWriter(console, f)
		}
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     ParseLogLevel(cfg.Level),
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	return slog.New(traceHandler{h}), nil
}

// traceHandler adds trace_id from the record's context.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}

// ParseLogLevel maps a config level name to a slog.Level. Unknown names
// mean info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithTraceID returns ctx tagged with traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(TraceIDContextKey).(string)
	return id
}

// CloseLogFile closes the log file opened by NewLogger. Safe to call when no
// file is open.
func CloseLogFile() error {
	logFile.Lock()
	defer logFile.Unlock()
	if logFile.f == nil {
		return nil
	}
	err := logFile.f.Close()
	logFile.f = nil
	return err
}

// ResetLoggerForTesting drops the process logger so InitializeLogger can
// run again.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}

func swapLogFile(f *os.File) {
	logFile.Lock()
	defer logFile.Unlock()
	if logFile.f != nil {
		_ = logFile.f.Close()
	}
	logFile.f = f
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/segmentio/ksuid"
)

type CtxKey string

const CtxKeyTraceID CtxKey = "trace_id"

// InitGlobalSlog installs the default logger for a service. Format is either
// "json" or "text"; anything else falls back to json.
func InitGlobalSlog(service, level, format string) *slog.Logger {
	logger := New(os.Stdout, level, format).With("service", service)
	slog.SetDefault(logger)
	return logger
}

func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = NewContextHandler(slog.NewTextHandler(w, opts))
	default:
		handler = NewContextJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID returns a copy of ctx carrying a fresh trace id. An existing id
// is kept so nested operations log under the same trace.
func WithTraceID(ctx context.Context) context.Context {
	if TraceID(ctx) != "" {
		return ctx
	}

	return context.WithValue(ctx, CtxKeyTraceID, ksuid.New().String())
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	str, _ := ctx.Value(CtxKeyTraceID).(string)
	return str
}

// ContextJSONHandler decorates records with the trace id found in the context.
type ContextJSONHandler struct {
	jsonHandler slog.Handler
}

func NewContextJSONHandler(w io.Writer, opts *slog.HandlerOptions) *ContextJSONHandler {
	return &ContextJSONHandler{slog.NewJSONHandler(w, opts)}
}

func NewContextHandler(h slog.Handler) *ContextJSONHandler {
	return &ContextJSONHandler{jsonHandler: h}
}

func (h *ContextJSONHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.jsonHandler.Enabled(ctx, level)
}

func (h *ContextJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextJSONHandler{jsonHandler: h.jsonHandler.WithAttrs(attrs)}
}

func (h *ContextJSONHandler) WithGroup(name string) slog.Handler {
	return &ContextJSONHandler{jsonHandler: h.jsonHandler.WithGroup(name)}
}

func (h *ContextJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := TraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String(string(CtxKeyTraceID), traceID))
	}

	return h.jsonHandler.Handle(ctx, r)
}

// Discard is a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

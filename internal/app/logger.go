package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/heartmarshall/tutor-backend/internal/config"
	"github.com/heartmarshall/tutor-backend/pkg/ctxutil"
)

// NewLogger builds the process logger on stderr and installs it as the slog
// default.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// newLogger picks JSON output for format "json" and text with source
// locations otherwise. Records logged with a context gain request_id and
// trace_id.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	json := strings.EqualFold(strings.TrimSpace(cfg.Format), "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !json,
	}

	var base slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		base = slog.NewJSONHandler(w, opts)
	}
	return slog.New(contextHandler{base})
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// contextHandler copies correlation ids from the context onto each record
// unless the caller already set them.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	var hasRequestID, hasTraceID bool
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			hasRequestID = true
		case "trace_id":
			hasTraceID = true
		}
		return true
	})

	if id := ctxutil.RequestIDFromCtx(ctx); id != "" && !hasRequestID {
		r.AddAttrs(slog.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() && !hasTraceID {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

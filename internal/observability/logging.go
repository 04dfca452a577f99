package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// LoggingConfig controls handler construction for the process-wide logger.
type LoggingConfig struct {
	// Level is the minimum level to emit: debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format selects the handler: "json" or "text".
	Format string `mapstructure:"format" yaml:"format"`
}

// NewLogger builds a slog.Logger from the logging configuration, writing to w.
// Unknown levels fall back to info; unknown formats fall back to text.
func NewLogger(cfg LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// SetDefault installs the configured logger as the process default so that
// packages using the slog package-level functions pick it up.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

// WithTrace returns a logger carrying trace_id and span_id fields when the
// context holds a recording OpenTelemetry span. Without a valid span the
// logger is returned unchanged, so call sites never need to branch.
func WithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	sc := span.SpanContext()
	return logger.With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}

func parseLevel(level string) slog.Level {
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

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by Config.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	Format string     `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// New creates a logger writing to w with optional context extractors.
// A nil writer means os.Stdout. Unknown formats fall back to JSON.
// When cfg.Sentry.DSN is set, records are also forwarded to Sentry.
func New(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	base := newStreamHandler(w, cfg)

	handler := base
	if cfg.Sentry.DSN != "" {
		sentryHandler, err := newSentryHandler(cfg.Sentry)
		if err != nil {
			// Keep logging to the stream if Sentry cannot start.
			slog.New(base).Error("failed to initialize sentry", slog.String("error", err.Error()))
		} else {
			handler = newMultiHandler(base, sentryHandler)
		}
	}

	return slog.New(withExtractors(handler, extractors))
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newStreamHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

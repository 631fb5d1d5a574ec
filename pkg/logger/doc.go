// Package logger provides structured logging with context extraction and Sentry integration.
//
// It extends log/slog with automatic context-based attribute injection and
// optional Sentry error reporting.
//
// # Basic Usage
//
//	log := logger.New(os.Stdout, logger.Config{Level: slog.LevelInfo},
//		middlewares.RequestIDExtractor(),
//	)
//	log.InfoContext(ctx, "post created", slog.String("id", id))
//	// {"level":"INFO","msg":"post created","id":"...","request_id":"..."}
//
// Config is parsed from the environment (LOG_LEVEL, LOG_FORMAT, SENTRY_*).
// Format "text" selects slog's text handler, anything else is JSON.
//
// # Sentry Integration
//
// When Config.Sentry.DSN is set, records are written to both the stream and
// Sentry. Errors create issues; warnings are stored as logs for context.
// If the DSN is empty or the SDK fails to start, logging continues to the
// stream only.
//
// # Context Extractors
//
// A ContextExtractor pulls a log attribute from the context on every call:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Return false to skip the attribute for that entry. Nil extractors are
// ignored. Extractors run on every record, after the level check.
package logger

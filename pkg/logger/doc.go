// Package logger builds structured slog loggers with per-record context
// extraction and optional Sentry forwarding.
//
// Two things set it apart from plain log/slog: extractors that inject
// request-scoped attributes (request IDs, user IDs) into every record
// automatically, and a Sentry hookup that degrades to stdout-only
// logging when no DSN is configured.
//
// # Basic usage
//
//	log := logger.New(middlewares.RequestIDExtractor())
//
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request processed","status":200,"request_id":"abc-123"}
//
// Extractors run on every log call against the call's context, so
// request-scoped values are always current. An extractor that returns
// false contributes nothing to that record.
//
// # Sentry
//
//	log := logger.NewWithSentry(logger.SentryConfig{
//	    DSN:         os.Getenv("SENTRY_DSN"),
//	    Environment: "production",
//	    MinLevel:    slog.LevelWarn,
//	}, middlewares.RequestIDExtractor())
//
// Error-level records become Sentry issues and warn-level records are
// stored as breadcrumb logs. With an empty DSN, or when Sentry
// initialization fails, the same call returns a stdout-only logger, so
// one code path serves development and production.
//
// # Custom handlers
//
// NewLogHandlerDecorator wraps any slog.Handler with the extractor
// behavior, for callers that want their own formatting or level rules:
//
//	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
//	log := slog.New(logger.NewLogHandlerDecorator(h, extractors...))
package logger

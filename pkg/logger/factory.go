package logger

import (
	"log/slog"
	"os"
)

// New builds a JSON logger writing to stdout at info level, with the
// given context extractors applied to every record.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewLogHandlerDecorator(h, extractors...))
}

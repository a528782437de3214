package logger

import "log/slog"

// NewNope returns a logger that drops everything. It stands in wherever
// a *slog.Logger is required but logging has not been configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

package pg

import "context"

// logger is the slice of slog.Logger the migration runner needs. Declaring
// it locally keeps the package decoupled from a concrete logging setup.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// DefaultCommandTimeout bounds every command unless overridden.
const DefaultCommandTimeout = 30 * time.Second

// EnsureContext returns a non-nil context, falling back to context.Background when nil.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies the provided timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// CommandLogger returns the commands module logger tagged with the command
// group, e.g. "content".
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":     "command",
		"command_group": group,
	})
}

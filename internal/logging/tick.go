package logging

import "context"

type tickIDKey struct{}

// WithTickID returns a context carrying the id of the current refresh tick.
func WithTickID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tickIDKey{}, id)
}

// TickID returns the tick id stored in ctx, or "-" when there is none.
func TickID(ctx context.Context) string {
	if id, ok := ctx.Value(tickIDKey{}).(string); ok && id != "" {
		return id
	}
	return "-"
}

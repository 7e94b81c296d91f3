package middleware

import (
	"context"

	"hike.io/web/internal/handlers"
)

// context keys are unexported to avoid collisions
type ctxKey string

const ctxKeyClient ctxKey = "client"

// WithClient stores the client classification in context.
func WithClient(ctx context.Context, c handlers.Client) context.Context {
	return context.WithValue(ctx, ctxKeyClient, c)
}

// ClientFromContext returns the client classification. Requests that did not
// pass through Capability are treated as vector capable.
func ClientFromContext(ctx context.Context) handlers.Client {
	if c, ok := ctx.Value(ctxKeyClient).(handlers.Client); ok {
		return c
	}
	return handlers.Client{VectorIcons: true}
}

package logger

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

var invocationIDKey = contextKey{}

// WithInvocationID returns a context carrying the MCP tool invocation ID,
// so engine logs can be correlated with the tool call that triggered them.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey, id)
}

// InvocationID extracts the tool invocation ID, or "" when unset.
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey).(string)
	return id
}

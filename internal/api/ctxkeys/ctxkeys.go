// Package ctxkeys holds the request context keys shared by middleware and
// handlers. It is a leaf package so neither side imports the other.
package ctxkeys

import "context"

// Key is the named type for all API context keys; context.Value compares
// type and value, so plain string keys from other packages cannot collide.
type Key string

const (
	// UserID is the authenticated user, injected by the auth middleware.
	UserID Key = "user_id"

	// Email is the authenticated user's email from the token claims.
	Email Key = "email"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String returns the non-empty string stored under key.
func String(ctx context.Context, key Key) (string, bool) {
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

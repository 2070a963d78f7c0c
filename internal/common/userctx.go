package common

import "context"

type contextKey int

const userIDKey contextKey = iota

// WithUserID stores the authenticated user ID in the request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user ID from context, or ""
// when the request is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID holds the authenticated user's id for rate limiting and
	// diagnostics. The full identity record is attached by the session
	// middleware under its own package key.
	CtxKeyUserID ctxKey = "user_id"
)

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserIDFromContext returns the authenticated user id, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

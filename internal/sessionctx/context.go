// Package sessionctx carries the browser session id through request contexts.
package sessionctx

import "context"

type ctxKey string

const sessionKey ctxKey = "mindcare.session_id"

// Header is the request header a client uses to name its session.
const Header = "X-Session-Id"

// WithSessionID stores the session id in context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// SessionIDFromContext extracts the session id if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(sessionKey)
	if val == nil {
		return "", false
	}
	sessionID, ok := val.(string)
	return sessionID, ok && sessionID != ""
}

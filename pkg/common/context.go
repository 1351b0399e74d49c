package common

import (
	"context"
	"net/http"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userKey      contextKey = "user"
)

// AuthenticatedUser is the identity attached to a request after the JWT
// middleware has validated its token.
type AuthenticatedUser struct {
	ID    string
	Email string
	Role  string
}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request ID attached to the context, if any.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user from the context.
func GetUser(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(userKey).(AuthenticatedUser)
	return user, ok
}

// RequestWithUser attaches the user to the request's context.
func RequestWithUser(r *http.Request, user AuthenticatedUser) *http.Request {
	return r.WithContext(WithUser(r.Context(), user))
}

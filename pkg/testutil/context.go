package testutil

import (
	"context"
	"net/http"
	"time"

	id "pantry/pkg/domain"
	"pantry/pkg/requestcontext"
)

// WithUser stamps a request with an authenticated user, simulating what the
// auth middleware does. Invalid IDs are silently ignored.
func WithUser(req *http.Request, userID string) *http.Request {
	if parsed, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
	}
	return req
}

// WithUserID stamps a request with an already-typed user ID.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithToken stamps a request with the JTI of its access token.
func WithToken(req *http.Request, jti string) *http.Request {
	return req.WithContext(requestcontext.WithTokenID(req.Context(), jti))
}

// FrozenContext returns a context with a fixed request time so created_at
// fields are deterministic in tests.
func FrozenContext(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

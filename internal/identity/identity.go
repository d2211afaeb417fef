package identity

import (
	"context"

	"github.com/fkhayef/ensamble/internal/apperr"
)

// Identity is the authenticated operator behind a request
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type contextKey struct{}

// WithIdentity returns a context carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity set by the auth middleware
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}

// Current resolves the identity or fails with SessionExpired
func Current(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, apperr.New(apperr.SessionExpired, "Session expired", "Session is not active. Sign in again.")
	}
	return id, nil
}

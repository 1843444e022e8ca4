package auth

import "context"

// Identity describes an authenticated API caller. Requests without a token
// carry no Identity; the service is open and the identity only attributes
// writes.
type Identity struct {
	UserID string
	Role   string
}

type contextKey struct{}

// WithIdentity annotates ctx with the caller's identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the caller identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

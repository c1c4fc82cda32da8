package auth

import "context"

type contextKey struct{}

// Identity is the admin acting on a request.
type Identity struct {
	AdminID   int
	AdminName string
}

// WithIdentity attaches the signed-in admin to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the admin attached by the session middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

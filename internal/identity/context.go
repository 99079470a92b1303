// Package identity carries the authenticated user through request context.
package identity

import "context"

type ctxKey string

const userKey ctxKey = "mentari.user"

// User is the authenticated caller as asserted by the identity provider token.
type User struct {
	ID    string
	Name  string
	Email string
}

// WithUser stores the user in context.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext extracts the user if present.
func FromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return User{}, false
	}
	u, ok := val.(User)
	return u, ok && u.ID != ""
}

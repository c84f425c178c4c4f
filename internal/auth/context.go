package auth

import "context"

type contextKey struct{}

// User identifies the authenticated caller for the current request.
type User struct {
	ID    string
	Email string
	Name  string
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok
}

// UserID returns the authenticated user's ID, or "" if unauthenticated.
func UserID(ctx context.Context) string {
	u, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return u.ID
}

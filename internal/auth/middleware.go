package auth

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// Middleware annotates the request context with the caller identity when a
// valid token is present. It never rejects: handlers decide how a missing
// identity is surfaced, so failures stay inside the JSON response contract.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := a.Authenticate(r); err == nil {
				r = r.WithContext(WithUserID(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID stores the authenticated user id on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID reports the authenticated user id, if any.
func UserID(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(ctxKey{}).(string)
	return user, ok && user != ""
}

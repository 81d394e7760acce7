package middleware

import (
	"context"
	"net/http"

	"github.com/dyilmaz/community-backend/internal/api/httpx"
	"github.com/dyilmaz/community-backend/internal/auth"
)

type ctxKey string

const ctxUserIDKey ctxKey = "uid"

// UserID returns the authenticated user's id. ok is false for anonymous
// callers, which is a valid state on public pages, not an error.
func UserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(int64)
	return v, ok
}

type AuthMiddleware struct {
	TM *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{TM: tm}
}

// Identity resolves the session cookie into a request-scoped identity.
// Missing or invalid tokens leave the request anonymous.
func (m *AuthMiddleware) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.SessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		uid, _, err := m.TM.Parse(token)
		if err != nil {
			// Expired remember-me cookies land here: drop them so the
			// browser stops resending a dead token.
			auth.ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated redirects anonymous callers to the login page with an
// explanatory flash message instead of exposing the protected resource.
func (m *AuthMiddleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			httpx.SetFlash(w, "You must be logged in to view that page.")
			httpx.Redirect(w, r, "/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

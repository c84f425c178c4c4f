package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"susurro/internal/auth"
	"susurro/internal/store"
)

// SessionCookie is the cookie handlers set on login and RequireAuth reads
// when no Authorization header is present.
const SessionCookie = "susurro_session"

// RequireAuth resolves the caller's session and populates the request
// context with the authenticated user. Tokens are accepted either as
// "Authorization: Bearer <token>" or via the session cookie.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(SessionCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(token)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			user, err := userStore.GetByID(sess.UserID)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			ctx := auth.WithUser(r.Context(), auth.User{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

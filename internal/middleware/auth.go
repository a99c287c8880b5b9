package middleware

import (
	"net/http"

	"github.com/moimapp/moim/internal/auth"
)

const SessionCookieName = "moim_session"

// RequireAuth validates the session cookie and populates AuthContext.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			claims, err := jwtManager.Validate(cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID:   claims.UserID,
				Username: claims.Username,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}

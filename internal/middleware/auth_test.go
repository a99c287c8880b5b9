package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moimapp/moim/internal/auth"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	var gotUserID int64
	handler := RequireAuth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		token, err := jwtManager.Generate(42, "hana")
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}

		req := httptest.NewRequest("GET", "/api/groups", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if gotUserID != 42 {
			t.Errorf("user id from context = %d, want 42", gotUserID)
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/groups", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/groups", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("token signed with other secret", func(t *testing.T) {
		other := auth.NewJWTManager("other-secret", time.Hour)
		token, err := other.Generate(42, "hana")
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}

		req := httptest.NewRequest("GET", "/api/groups", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

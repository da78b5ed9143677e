package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leaveportal/internal/domain/auth"
)

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", EmployeeID: "IAU-010", RoleName: "manager"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.UserID != "u1" || user.EmployeeID != "IAU-010" || user.Role != auth.RoleManager {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareRejectsUntrustedTokens(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		role   string
	}{
		{"foreign signature", "other-secret", "admin"},
		{"unknown role", "secret", "superuser"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := auth.GenerateToken(tc.secret, auth.Claims{UserID: "u1", EmployeeID: "IAU-010", RoleName: tc.role}, time.Hour)
			if err != nil {
				t.Fatalf("token error: %v", err)
			}
			handler := Auth("secret")(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not run")
			})))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if token, ok := bearerToken("bearer abc"); !ok || token != "abc" {
		t.Fatalf("expected abc, got %q %v", token, ok)
	}
	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer a b"} {
		if _, ok := bearerToken(header); ok {
			t.Fatalf("expected %q to be rejected", header)
		}
	}
}

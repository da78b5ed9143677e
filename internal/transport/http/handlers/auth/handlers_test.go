package authhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/transport/http/middleware"
)

type fakeUsers struct {
	users map[string]auth.AuthUser
}

func (f fakeUsers) FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error) {
	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return auth.AuthUser{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (f fakeUsers) FindUserByID(ctx context.Context, userID string) (auth.AuthUser, error) {
	for _, user := range f.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return auth.AuthUser{}, auth.ErrUserNotFound
}

func (f fakeUsers) UpdatePassword(ctx context.Context, userID, hash string) error {
	for email, user := range f.users {
		if user.ID == userID {
			user.PasswordHash = hash
			f.users[email] = user
			return nil
		}
	}
	return auth.ErrUserNotFound
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	hash, err := auth.HashPassword("Secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := fakeUsers{users: map[string]auth.AuthUser{
		"manager@example.com": {ID: "u-1", EmployeeID: "IAU-010", Email: "manager@example.com", Role: auth.RoleManager, PasswordHash: hash},
	}}
	return NewHandler(users, "test-secret", time.Hour)
}

func login(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)
	return rec
}

func TestLoginIssuesToken(t *testing.T) {
	h := newHandler(t)
	rec := login(h, `{"email":"Manager@example.com","password":"Secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data struct {
			Token string       `json:"token"`
			User  userResponse `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := auth.ParseToken("test-secret", env.Data.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	user := claims.UserContext()
	if user.UserID != "u-1" || user.EmployeeID != "IAU-010" || user.Role != auth.RoleManager {
		t.Fatalf("unexpected claims: %+v", user)
	}
	if env.Data.User.Role != auth.RoleManager || !contains(env.Data.User.Permissions, auth.PermLeaveApprove) {
		t.Fatalf("unexpected user payload: %+v", env.Data.User)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHandler(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"email":"manager@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"email":"ghost@example.com","password":"Secret123"}`, http.StatusUnauthorized},
		{"missing fields", `{"email":""}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := login(h, tc.body); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}

func serveMe(h *Handler, user *auth.UserContext) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	h.HandleMe(rec, req)
	return rec
}

func TestMe(t *testing.T) {
	h := newHandler(t)

	if rec := serveMe(h, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	tests := []struct {
		name   string
		role   auth.Role
		has    []string
		hasNot []string
	}{
		{"manager", auth.RoleManager, []string{auth.PermEmployeesRead, auth.PermLeaveApprove}, []string{auth.PermEmployeesWrite, auth.PermAuditRead}},
		{"employee", auth.RoleEmployee, []string{auth.PermLeaveWrite}, []string{auth.PermLeaveApprove}},
		{"admin", auth.RoleAdmin, []string{auth.PermEmployeesWrite, auth.PermUnitsWrite, auth.PermJobsRun}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveMe(h, &auth.UserContext{UserID: "u-1", EmployeeID: "IAU-010", Role: tc.role})
			var env struct {
				Data userResponse `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rec.Code != http.StatusOK || env.Data.Role != tc.role {
				t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
			}
			if len(env.Data.Permissions) != len(auth.RolePermissions[tc.role]) {
				t.Fatalf("expected the %s permission set, got %v", tc.role, env.Data.Permissions)
			}
			for _, perm := range tc.has {
				if !contains(env.Data.Permissions, perm) {
					t.Fatalf("missing %s in %v", perm, env.Data.Permissions)
				}
			}
			for _, perm := range tc.hasNot {
				if contains(env.Data.Permissions, perm) {
					t.Fatalf("unexpected %s in %v", perm, env.Data.Permissions)
				}
			}
		})
	}
}

func changePassword(h *Handler, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/password", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: userID, EmployeeID: "IAU-010", Role: auth.RoleManager}))
	rec := httptest.NewRecorder()
	h.HandleChangePassword(rec, req)
	return rec
}

func TestChangePassword(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name   string
		userID string
		body   string
		want   int
	}{
		{"wrong current", "u-1", `{"current_password":"nope","new_password":"Another123"}`, http.StatusBadRequest},
		{"too short", "u-1", `{"current_password":"Secret123","new_password":"short"}`, http.StatusBadRequest},
		{"unchanged", "u-1", `{"current_password":"Secret123","new_password":"Secret123"}`, http.StatusBadRequest},
		{"missing fields", "u-1", `{}`, http.StatusBadRequest},
		{"deleted account", "u-gone", `{"current_password":"Secret123","new_password":"Another123"}`, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := changePassword(h, tc.userID, tc.body); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}

	rec := changePassword(h, "u-1", `{"current_password":"Secret123","new_password":"Another123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := login(h, `{"email":"manager@example.com","password":"Secret123"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password still accepted: %d", rec.Code)
	}
	if rec := login(h, `{"email":"manager@example.com","password":"Another123"}`); rec.Code != http.StatusOK {
		t.Fatalf("new password rejected: %d", rec.Code)
	}
}

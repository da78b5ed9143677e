package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/transport/http/api"
	"leaveportal/internal/transport/http/middleware"
	"leaveportal/internal/transport/http/shared"
)

const minPasswordLength = 8

// Accounts is the credential store behind login and password changes.
type Accounts interface {
	FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error)
	FindUserByID(ctx context.Context, userID string) (auth.AuthUser, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
}

type Handler struct {
	Users    Accounts
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(users Accounts, secret string, ttl time.Duration) *Handler {
	return &Handler{Users: users, Secret: secret, TokenTTL: ttl}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userResponse struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	Email       string    `json:"email,omitempty"`
	Role        auth.Role `json:"role"`
	Permissions []string  `json:"permissions"`
}

func newUserResponse(id, employeeID, email string, role auth.Role) userResponse {
	perms := append([]string{}, auth.RolePermissions[role]...)
	return userResponse{ID: id, EmployeeID: employeeID, Email: email, Role: role, Permissions: perms}
}

// RegisterPublicRoutes mounts the routes reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
	r.Post("/auth/password", h.HandleChangePassword)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	user, err := h.Users.FindActiveUserByEmail(r.Context(), strings.TrimSpace(payload.Email))
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		slog.Error("login lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		RoleName:   user.Role.String(),
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  newUserResponse(user.ID, user.EmployeeID, user.Email, user.Role),
	}, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, newUserResponse(user.UserID, user.EmployeeID, "", user.Role), middleware.GetRequestID(r.Context()))
}

// HandleChangePassword replaces the caller's password after checking the
// current one. Issued tokens stay valid until they expire.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("current_password", payload.CurrentPassword, "is required")
	v.Required("new_password", payload.NewPassword, "is required")
	v.MinLen("new_password", payload.NewPassword, minPasswordLength)
	if payload.NewPassword != "" && payload.NewPassword == payload.CurrentPassword {
		v.Add("new_password", "must differ from current_password")
	}
	if v.Reject(w, reqID) {
		return
	}

	user, err := h.Users.FindUserByID(r.Context(), caller.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "account no longer active", reqID)
		return
	}
	if err != nil {
		slog.Error("password change lookup failed", "userId", caller.UserID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "password change failed", reqID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.CurrentPassword); err != nil {
		shared.FailField(w, reqID, "current_password", "is incorrect")
		return
	}
	hash, err := auth.HashPassword(payload.NewPassword)
	if err == nil {
		err = h.Users.UpdatePassword(r.Context(), user.ID, hash)
	}
	if err != nil {
		slog.Error("password change failed", "userId", user.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "password change failed", reqID)
		return
	}
	slog.Info("password changed", "userId", user.ID)
	api.Success(w, map[string]string{"message": "password updated"}, reqID)
}

package middleware

import (
	"log/slog"
	"net/http"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/transport/http/api"
)

// RequirePermission checks the caller's role against the static permission
// table.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !auth.HasPermission(user.Role, permission) {
				slog.Warn("permission denied", "userId", user.UserID, "role", user.Role, "permission", permission)
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

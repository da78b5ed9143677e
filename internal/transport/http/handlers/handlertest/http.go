package handlertest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/transport/http/middleware"
)

// Now is the fixed clock used by handler tests.
func Now() time.Time {
	return time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
}

// LeaveService wires a leave service over the in-memory stores with the
// fixed clock.
func LeaveService(roster *Roster, requests *Requests) *leave.Service {
	svc := leave.NewService(requests, roster, leave.DefaultContractMonths)
	svc.Now = Now
	return svc
}

func User(employeeID string, role auth.Role) *auth.UserContext {
	return &auth.UserContext{UserID: "user-" + employeeID, EmployeeID: employeeID, Role: role}
}

// Serve routes one request through a fresh chi router after placing user in
// the request context. A nil user sends the request anonymously.
func Serve(t *testing.T, register func(chi.Router), user *auth.UserContext, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return ServeRequest(t, register, user, NewRequest(method, path, body))
}

// NewRequest builds a request with a JSON body when body is set.
func NewRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// ServeRequest is Serve for a prepared request, for tests that need headers.
func ServeRequest(t *testing.T, register func(chi.Router), user *auth.UserContext, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user != nil {
				req = req.WithContext(middleware.WithUser(req.Context(), *user))
			}
			next.ServeHTTP(w, req)
		})
	})
	register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// Decode unwraps the data field of a success envelope into out.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v: %s", err, rec.Body.String())
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v: %s", err, string(env.Data))
	}
}

// ErrorCode returns the error code of a failure envelope.
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v: %s", err, rec.Body.String())
	}
	return env.Error.Code
}

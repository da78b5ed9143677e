package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"leaveportal/internal/transport/http/api"
)

type keyFunc func(r *http.Request) string

type rateBucket struct {
	count int
	reset time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   keyFunc
	clients map[string]*rateBucket
}

// RateLimit caps every request per signed-in user, or per client IP for
// anonymous callers.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, actorOrIPKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type mutationScope int

const (
	scopeNone mutationScope = iota
	// scopeCredentials covers login, first-run setup and password changes.
	scopeCredentials
	// scopeLeave covers filing, deciding and exporting leave.
	scopeLeave
	// scopeRoster covers employee, unit and account administration.
	scopeRoster
)

type mutationRoute struct {
	method  string
	pattern string
	scope   mutationScope
}

// mutationRoutes lists the writes that get a budget below the general one.
// Patterns are matched with path.Match against the path below /api/v1.
var mutationRoutes = []mutationRoute{
	{http.MethodPost, "/auth/login", scopeCredentials},
	{http.MethodPost, "/auth/password", scopeCredentials},
	{http.MethodPost, "/setup/initialize", scopeCredentials},
	{http.MethodPost, "/requests", scopeLeave},
	{http.MethodPut, "/requests/*/status", scopeLeave},
	{http.MethodPost, "/reports/team", scopeLeave},
	{http.MethodPost, "/jobs/contract-reminders", scopeRoster},
	{http.MethodPost, "/employees", scopeRoster},
	{http.MethodPut, "/employees/*", scopeRoster},
	{http.MethodDelete, "/users/*", scopeRoster},
	{http.MethodPost, "/units", scopeRoster},
	{http.MethodPut, "/units/*", scopeRoster},
	{http.MethodDelete, "/units/*", scopeRoster},
}

func routeScope(r *http.Request) mutationScope {
	p := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	for _, route := range mutationRoutes {
		if route.method != r.Method {
			continue
		}
		if ok, _ := path.Match(route.pattern, p); ok {
			return route.scope
		}
	}
	return scopeNone
}

// SensitiveMutationRateLimit gives credential routes a quarter of baseLimit,
// counted both per client IP and per account, and other listed writes half of
// it per user.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	credentialLimit := max(baseLimit/4, 1)
	writeLimit := max(baseLimit/2, 1)
	limiters := map[mutationScope][]*rateLimiter{
		scopeCredentials: {
			newRateLimiter(credentialLimit, window, ClientIP),
			newRateLimiter(credentialLimit, window, accountKey),
		},
		scopeLeave:  {newRateLimiter(writeLimit, window, actorOrIPKey)},
		scopeRoster: {newRateLimiter(writeLimit, window, actorOrIPKey)},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, rl := range limiters[routeScope(r)] {
				if !rl.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accountKey names the account a credential request targets: the login email
// when the body carries one, the signed-in user otherwise.
func accountKey(r *http.Request) string {
	if email := jsonEmail(r); email != "" {
		return "email:" + strings.ToLower(email)
	}
	return actorOrIPKey(r)
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return ClientIP(r)
}

// ClientIP prefers the first X-Forwarded-For hop over RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// jsonEmail peeks at the email field of a JSON body and restores the body for
// the handler.
func jsonEmail(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	return strings.TrimSpace(payload.Email)
}

func newRateLimiter(limit int, window time.Duration, fn keyFunc) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		keyFn:   fn,
		clients: map[string]*rateBucket{},
	}
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rl.keyFn(r)
	now := time.Now()

	rl.mu.Lock()
	bucket, ok := rl.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.clients[key] = bucket
	}
	bucket.count++
	remaining := max(rl.limit-bucket.count, 0)
	resetIn := secondsUntil(bucket.reset, now)
	overLimit := bucket.count > rl.limit
	rl.mu.Unlock()

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

	if overLimit {
		w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
		slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path, "method", r.Method, "limit", rl.limit)
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

// secondsUntil rounds up so a client never retries before the window resets.
func secondsUntil(reset, now time.Time) int {
	d := reset.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

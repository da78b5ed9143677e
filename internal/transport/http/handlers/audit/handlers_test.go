package audithandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"leaveportal/internal/domain/audit"
	"leaveportal/internal/domain/auth"
	"leaveportal/internal/transport/http/handlers/handlertest"
)

type fakeEvents struct {
	events     []audit.Event
	err        error
	lastFilter audit.Filter
	lastLimit  int
	lastOffset int
}

func (f *fakeEvents) Count(ctx context.Context, filter audit.Filter) (int, error) {
	return len(f.events), nil
}

func (f *fakeEvents) List(ctx context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error) {
	f.lastFilter, f.lastLimit, f.lastOffset = filter, limit, offset
	return f.events, f.err
}

func sample() *fakeEvents {
	return &fakeEvents{events: []audit.Event{{
		ID:         7,
		ActorID:    "user-M",
		Action:     audit.ActionStatusChanged,
		EntityType: audit.EntityLeaveRequest,
		EntityID:   "1",
		RequestID:  "req-1",
		IP:         "10.0.0.1",
		CreatedAt:  time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC),
	}}}
}

func TestListEventsAdminOnly(t *testing.T) {
	h := NewHandler(sample())
	for _, role := range []auth.Role{auth.RoleDean, auth.RoleManager, auth.RoleEmployee} {
		rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("X", role), http.MethodGet, "/audit/events", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", role, rec.Code)
		}
	}
}

func TestListEventsPassesFilter(t *testing.T) {
	events := sample()
	h := NewHandler(events)

	var out []audit.Event
	rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("A", auth.RoleAdmin), http.MethodGet,
		"/audit/events?action=leave.request.status_changed&entity_id=1&limit=10&offset=5", "")
	handlertest.Decode(t, rec, &out)
	if len(out) != 1 || out[0].ID != 7 {
		t.Fatalf("unexpected events %+v", out)
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("unexpected total %q", rec.Header().Get("X-Total-Count"))
	}
	if events.lastFilter.Action != audit.ActionStatusChanged || events.lastFilter.EntityID != "1" {
		t.Fatalf("unexpected filter %+v", events.lastFilter)
	}
	if events.lastLimit != 10 || events.lastOffset != 5 {
		t.Fatalf("unexpected window %d/%d", events.lastLimit, events.lastOffset)
	}
}

func TestListEventsFailure(t *testing.T) {
	h := NewHandler(&fakeEvents{err: errors.New("db down")})
	rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("A", auth.RoleAdmin), http.MethodGet, "/audit/events", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestExportEventsCSV(t *testing.T) {
	h := NewHandler(sample())
	rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("A", auth.RoleAdmin), http.MethodGet, "/audit/events/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", rec.Body.String())
	}
	if lines[1] != "7,user-M,leave.request.status_changed,leave_request,1,req-1,10.0.0.1,2025-04-10T09:00:00Z" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

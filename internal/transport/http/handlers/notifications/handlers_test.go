package notificationshandler

import (
	"context"
	"net/http"
	"testing"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/notifications"
	"leaveportal/internal/platform/jobs"
	"leaveportal/internal/transport/http/handlers/handlertest"
)

type fakeInbox struct {
	items      []notifications.Notification
	read       []int64
	unreadOnly bool
	runs       int
}

func (f *fakeInbox) List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]notifications.Notification, int, error) {
	f.unreadOnly = unreadOnly
	out := []notifications.Notification{}
	for _, n := range f.items {
		if n.EmployeeID == employeeID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (f *fakeInbox) MarkRead(ctx context.Context, employeeID string, notificationID int64) error {
	for _, n := range f.items {
		if n.ID == notificationID && n.EmployeeID == employeeID {
			f.read = append(f.read, notificationID)
			return nil
		}
	}
	return notifications.ErrNotFound
}

func (f *fakeInbox) ContractReminders(ctx context.Context) (notifications.ReminderRun, error) {
	f.runs++
	return notifications.ReminderRun{Checked: 4, Sent: 1}, nil
}

type recordingRunner struct {
	jobType string
}

func (r *recordingRunner) RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error) {
	r.jobType = jobType
	return run(ctx)
}

func inbox() *fakeInbox {
	return &fakeInbox{items: []notifications.Notification{
		{ID: 1, EmployeeID: "M", Type: notifications.TypeLeaveSubmitted, Title: "New Leave Request"},
		{ID: 2, EmployeeID: "B", Type: notifications.TypeLeaveApproved, Title: "Leave Request Approved"},
	}}
}

func TestListOwnInbox(t *testing.T) {
	svc := inbox()
	h := NewHandler(svc, nil)

	var out []notifications.Notification
	rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("M", auth.RoleManager), http.MethodGet, "/notifications?unread=true", "")
	handlertest.Decode(t, rec, &out)
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("unexpected inbox %+v", out)
	}
	if !svc.unreadOnly {
		t.Fatal("expected unread filter to be passed through")
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("unexpected total %q", rec.Header().Get("X-Total-Count"))
	}

	rec = handlertest.Serve(t, h.RegisterRoutes, handlertest.User("", auth.RoleAdmin), http.MethodGet, "/notifications", "")
	if rec.Code != http.StatusForbidden || handlertest.ErrorCode(t, rec) != "no_employee_profile" {
		t.Fatalf("expected no_employee_profile, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestMarkRead(t *testing.T) {
	svc := inbox()
	h := NewHandler(svc, nil)
	user := handlertest.User("M", auth.RoleManager)

	if rec := handlertest.Serve(t, h.RegisterRoutes, user, http.MethodPost, "/notifications/1/read", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.read) != 1 || svc.read[0] != 1 {
		t.Fatalf("unexpected reads %v", svc.read)
	}

	if rec := handlertest.Serve(t, h.RegisterRoutes, user, http.MethodPost, "/notifications/2/read", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected someone else's notification to be 404, got %d", rec.Code)
	}
	if rec := handlertest.Serve(t, h.RegisterRoutes, user, http.MethodPost, "/notifications/abc/read", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRunContractReminders(t *testing.T) {
	svc := inbox()
	runner := &recordingRunner{}
	h := NewHandler(svc, runner)

	rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("M", auth.RoleManager), http.MethodPost, "/jobs/contract-reminders", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for managers, got %d", rec.Code)
	}

	var run notifications.ReminderRun
	rec = handlertest.Serve(t, h.RegisterRoutes, handlertest.User("A", auth.RoleAdmin), http.MethodPost, "/jobs/contract-reminders", "")
	handlertest.Decode(t, rec, &run)
	if run.Checked != 4 || run.Sent != 1 {
		t.Fatalf("unexpected run %+v", run)
	}
	if runner.jobType != jobs.JobContractReminders || svc.runs != 1 {
		t.Fatalf("expected the run to go through the job runner, got %q/%d", runner.jobType, svc.runs)
	}
}

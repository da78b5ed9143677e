package notificationshandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/domain/notifications"
	"leaveportal/internal/platform/jobs"
	"leaveportal/internal/transport/http/api"
	"leaveportal/internal/transport/http/middleware"
	"leaveportal/internal/transport/http/shared"
)

type Inbox interface {
	List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]notifications.Notification, int, error)
	MarkRead(ctx context.Context, employeeID string, notificationID int64) error
	ContractReminders(ctx context.Context) (notifications.ReminderRun, error)
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error)
}

type Handler struct {
	Service Inbox
	Jobs    JobRunner
}

// NewHandler serves the inbox. A nil runner runs the reminder pass inline
// without a run log entry.
func NewHandler(service Inbox, runner JobRunner) *Handler {
	return &Handler{Service: service, Jobs: runner}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
	r.With(middleware.RequirePermission(auth.PermJobsRun)).Post("/jobs/contract-reminders", h.handleRunReminders)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if user.EmployeeID == "" {
		shared.FailDomain(w, leave.ErrNoEmployee, "notification_list_failed", reqID)
		return
	}

	page, ok := shared.ParsePagination(r, 100, 500)
	if !ok {
		page = shared.Pagination{Limit: 100}
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, total, err := h.Service.List(r.Context(), user.EmployeeID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		shared.FailDomain(w, err, "notification_list_failed", reqID)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	notificationID, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil || notificationID <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid notification id", reqID)
		return
	}
	if err := h.Service.MarkRead(r.Context(), user.EmployeeID, notificationID); err != nil {
		shared.FailDomain(w, err, "notification_update_failed", reqID)
		return
	}

	api.Success(w, map[string]string{"status": "read"}, reqID)
}

func (h *Handler) handleRunReminders(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	run := func(ctx context.Context) (any, error) {
		return h.Service.ContractReminders(ctx)
	}

	var (
		details any
		err     error
	)
	if h.Jobs != nil {
		details, err = h.Jobs.RunNow(r.Context(), jobs.JobContractReminders, run)
	} else {
		details, err = run(r.Context())
	}
	if err != nil {
		shared.FailDomain(w, err, "reminder_run_failed", reqID)
		return
	}
	api.Success(w, details, reqID)
}

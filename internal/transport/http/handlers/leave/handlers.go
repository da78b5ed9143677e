package leavehandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"leaveportal/internal/domain/audit"
	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/domain/report"
	"leaveportal/internal/platform/metrics"
	"leaveportal/internal/transport/http/api"
	"leaveportal/internal/transport/http/middleware"
	"leaveportal/internal/transport/http/shared"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Notifier tells the people involved about a new or decided request.
type Notifier interface {
	LeaveSubmitted(ctx context.Context, req leave.Request) error
	LeaveDecided(ctx context.Context, req leave.Request) error
}

type Handler struct {
	Service     *leave.Service
	Idempotency middleware.IdempotencyChecker
	Audit       AuditRecorder
	Notifier    Notifier
	Metrics     *metrics.Collector
}

func NewHandler(service *leave.Service, idem middleware.IdempotencyChecker, recorder AuditRecorder, notifier Notifier, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Idempotency: idem, Audit: recorder, Notifier: notifier, Metrics: collector}
}

// record writes an audit entry. A failed write is logged and never fails the
// request that triggered it.
func (h *Handler) record(r *http.Request, user auth.UserContext, action string, leaveID int64, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: audit.EntityLeaveRequest,
		EntityID:   strconv.FormatInt(leaveID, 10),
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         middleware.ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", leaveID, "err", err)
	}
}

func (h *Handler) notify(ctx context.Context, req leave.Request) {
	if h.Notifier == nil {
		return
	}
	var err error
	if req.Status == leave.StatusPending {
		err = h.Notifier.LeaveSubmitted(ctx, req)
	} else {
		err = h.Notifier.LeaveDecided(ctx, req)
	}
	if err != nil {
		slog.Warn("leave notification failed", "requestId", req.ID, "status", req.Status, "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/", h.handleListRequests)
		r.With(
			middleware.RequirePermission(auth.PermLeaveWrite),
			middleware.Idempotent(h.Idempotency, "leave.requests.create"),
		).Post("/", h.handleCreateRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/{requestID}", h.handleGetRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/{requestID}/download", h.handleDownloadForm)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite)).Put("/{requestID}/status", h.handleUpdateStatus)
	})
	r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/attendance/today", h.handleAttendanceToday)
	r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Get("/approvals", h.handleApprovals)
	r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/dashboard", h.handleDashboard)
}

type createRequest struct {
	VacationType string `json:"vacation_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Reason       string `json:"reason"`
}

type statusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

const maxReasonLength = 1000

// requestID reads the {requestID} path segment, writing a 400 when it is not
// a positive integer.
func requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid request id", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	requests, err := h.Service.Requests(r.Context(), user)
	if err != nil {
		shared.FailDomain(w, err, "leave_list_failed", reqID)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		v := shared.NewValidator()
		status, _ := v.Status("status", raw, true)
		if v.Reject(w, reqID) {
			return
		}
		filtered := requests[:0]
		for _, req := range requests {
			if req.Status == status {
				filtered = append(filtered, req)
			}
		}
		requests = filtered
	}
	if page, ok := shared.ParsePagination(r, defaultPageSize, maxPageSize); ok {
		requests = shared.Page(requests, page)
	}
	api.Success(w, requests, reqID)
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	vacationType, _ := v.VacationType("vacation_type", payload.VacationType)
	start, _ := v.Date("start_date", payload.StartDate)
	end, _ := v.Date("end_date", payload.EndDate)
	v.DateOrder("start_date", start, "end_date", end)
	v.MaxLen("reason", strings.TrimSpace(payload.Reason), maxReasonLength)
	if v.Reject(w, reqID) {
		return
	}

	created, err := h.Service.CreateRequest(r.Context(), user, leave.NewRequest{
		VacationType: vacationType,
		StartDate:    start,
		EndDate:      end,
		Reason:       strings.TrimSpace(payload.Reason),
	})
	if err != nil {
		shared.FailDomain(w, err, "leave_create_failed", reqID)
		return
	}
	h.record(r, user, audit.ActionRequestCreated, created.ID, nil, created)
	h.notify(r.Context(), created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	id, ok := requestID(w, r)
	if !ok {
		return
	}

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	next, _ := v.Status("status", payload.Status, false)
	v.MaxLen("rejection_reason", strings.TrimSpace(payload.RejectionReason), maxReasonLength)
	if v.Reject(w, reqID) {
		return
	}
	if (next == leave.StatusApproved || next == leave.StatusRejected) && !auth.HasPermission(user.Role, auth.PermLeaveApprove) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}

	updated, err := h.Service.UpdateStatus(r.Context(), user, id, next, strings.TrimSpace(payload.RejectionReason))
	if err != nil {
		shared.FailDomain(w, err, "leave_update_failed", reqID)
		return
	}
	h.record(r, user, audit.ActionStatusChanged, updated.ID,
		map[string]leave.Status{"status": leave.StatusPending},
		map[string]any{"status": updated.Status, "rejection_reason": updated.RejectionReason})
	h.notify(r.Context(), updated)
	h.Metrics.StatusChanged(string(updated.Status))
	api.Success(w, updated, reqID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	id, ok := requestID(w, r)
	if !ok {
		return
	}

	req, err := h.Service.Request(r.Context(), user, id)
	if err != nil {
		shared.FailDomain(w, err, "leave_fetch_failed", reqID)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleDownloadForm(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	id, ok := requestID(w, r)
	if !ok {
		return
	}

	form, err := h.Service.Form(r.Context(), user, id)
	if err != nil {
		shared.FailDomain(w, err, "leave_form_failed", reqID)
		return
	}
	body, err := report.RenderLeaveForm(form)
	if err != nil {
		shared.FailDomain(w, err, "leave_form_failed", reqID)
		return
	}
	h.Metrics.ReportGenerated("form")
	api.Attachment(w, report.FormatPDF.ContentType(), report.FormFilename(id), body)
}

func (h *Handler) handleAttendanceToday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	attendance, err := h.Service.AttendanceToday(r.Context(), user)
	if err != nil {
		shared.FailDomain(w, err, "attendance_failed", reqID)
		return
	}
	api.Success(w, attendance, reqID)
}

func (h *Handler) handleApprovals(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	approvals, err := h.Service.Approvals(r.Context(), user)
	if err != nil {
		shared.FailDomain(w, err, "approvals_failed", reqID)
		return
	}
	api.Success(w, approvals, reqID)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	dashboard, err := h.Service.Dashboard(r.Context(), user)
	if err != nil {
		shared.FailDomain(w, err, "dashboard_failed", reqID)
		return
	}
	h.Metrics.ObserveScope(dashboard.TeamSize)
	api.Success(w, dashboard, reqID)
}

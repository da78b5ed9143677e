package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/domain/notifications"
	"leaveportal/internal/domain/report"
	"leaveportal/internal/transport/http/api"
)

// FailDomain maps domain sentinel errors to an HTTP status and envelope
// code. Anything unrecognised is logged and reported as a 500 with
// fallbackCode.
func FailDomain(w http.ResponseWriter, err error, fallbackCode, requestID string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, core.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", "an employee with this ID or email already exists", requestID)
	case errors.Is(err, core.ErrUnitInUse):
		api.Fail(w, http.StatusConflict, "unit_in_use", "unit has assigned employees", requestID)
	case errors.Is(err, core.ErrAlreadySetUp):
		api.Fail(w, http.StatusConflict, "already_set_up", "the portal is already set up", requestID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
	case errors.Is(err, notifications.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "notification not found", requestID)
	case errors.Is(err, leave.ErrNoEmployee):
		api.Fail(w, http.StatusForbidden, "no_employee_profile", "user has no employee profile", requestID)
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "request is outside your scope", requestID)
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", "end date must not be before start date", requestID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_balance", "insufficient vacation balance", requestID)
	case errors.Is(err, leave.ErrReasonRequired):
		api.Fail(w, http.StatusBadRequest, "reason_required", "a rejection reason is required", requestID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "request is no longer pending", requestID)
	case errors.Is(err, report.ErrUnknownFilter), errors.Is(err, report.ErrUnknownFormat):
		api.Fail(w, http.StatusBadRequest, "invalid_report_options", err.Error(), requestID)
	default:
		slog.Error("request failed", "code", fallbackCode, "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "internal error", requestID)
	}
}

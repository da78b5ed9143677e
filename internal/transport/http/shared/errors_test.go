package shared

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/domain/report"
)

func TestFailDomainStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get: %w", leave.ErrNotFound), http.StatusNotFound},
		{leave.ErrNoEmployee, http.StatusForbidden},
		{leave.ErrForbidden, http.StatusForbidden},
		{leave.ErrInvalidRange, http.StatusBadRequest},
		{leave.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{leave.ErrReasonRequired, http.StatusBadRequest},
		{leave.ErrInvalidState, http.StatusConflict},
		{report.ErrUnknownFilter, http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		FailDomain(rec, tc.err, "failed", "req")
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

package reportshandler

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/domain/report"
	"leaveportal/internal/platform/metrics"
	"leaveportal/internal/transport/http/handlers/handlertest"
)

func newHandler() *Handler {
	roster, requests := handlertest.Fixture()
	svc := report.NewService(requests, roster, leave.DefaultContractMonths)
	svc.Now = handlertest.Now
	return NewHandler(svc, metrics.New(), "last_30")
}

func TestTeamReportPDF(t *testing.T) {
	h := newHandler()
	rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("M", auth.RoleManager), http.MethodPost, "/reports/team", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "team_report_20250311_20250410.pdf") {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a PDF body")
	}
}

func TestTeamReportXLSX(t *testing.T) {
	h := newHandler()
	body := `{"filter_type":"custom","start_date":"2025-04-01","end_date":"2025-04-09","format":"xlsx","language":"ar","date_system":"hijri"}`
	rec := handlertest.Serve(t, h.RegisterRoutes, handlertest.User("D", auth.RoleDean), http.MethodPost, "/reports/team", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != report.FormatXLSX.ContentType() {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "team_report_20250401_20250409.xlsx") {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected a zip container")
	}
}

func TestTeamReportRejectsBadOptions(t *testing.T) {
	h := newHandler()
	manager := handlertest.User("M", auth.RoleManager)
	cases := []struct {
		name string
		body string
	}{
		{"filter", `{"filter_type":"decade"}`},
		{"format", `{"format":"docx"}`},
		{"language", `{"language":"fr"}`},
		{"date system", `{"date_system":"julian"}`},
		{"bad date", `{"filter_type":"custom","start_date":"04/01/2025","end_date":"2025-04-09"}`},
		{"reversed", `{"filter_type":"custom","start_date":"2025-04-09","end_date":"2025-04-01"}`},
		{"malformed", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := handlertest.Serve(t, h.RegisterRoutes, manager, http.MethodPost, "/reports/team", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTeamReportNeedsEmployeeProfile(t *testing.T) {
	h := newHandler()
	user := &auth.UserContext{UserID: "svc", Role: auth.RoleAdmin}
	rec := handlertest.Serve(t, h.RegisterRoutes, user, http.MethodPost, "/reports/team", `{}`)
	if rec.Code != http.StatusForbidden || handlertest.ErrorCode(t, rec) != "no_employee_profile" {
		t.Fatalf("expected no_employee_profile, got %d %s", rec.Code, rec.Body.String())
	}
}

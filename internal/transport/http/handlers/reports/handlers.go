package reportshandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/report"
	"leaveportal/internal/platform/calendar"
	"leaveportal/internal/platform/metrics"
	"leaveportal/internal/transport/http/api"
	"leaveportal/internal/transport/http/middleware"
	"leaveportal/internal/transport/http/shared"
)

type Handler struct {
	Service       *report.Service
	Metrics       *metrics.Collector
	DefaultFilter string
}

func NewHandler(service *report.Service, collector *metrics.Collector, defaultFilter string) *Handler {
	return &Handler{Service: service, Metrics: collector, DefaultFilter: defaultFilter}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Post("/team", h.handleTeamReport)
	})
}

type teamReportRequest struct {
	FilterType string `json:"filter_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Language   string `json:"language"`
	DateSystem string `json:"date_system"`
	Format     string `json:"format"`
}

func (h *Handler) handleTeamReport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload teamReportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if strings.TrimSpace(payload.FilterType) == "" {
		payload.FilterType = h.DefaultFilter
	}

	v := shared.NewValidator()
	filter, err := report.ParseFilter(payload.FilterType)
	if err != nil {
		v.Add("filter_type", "must be one of ytd, last_30, last_60, last_90, full_year, custom")
	}
	format, err := report.ParseFormat(payload.Format)
	if err != nil {
		v.Add("format", "must be pdf or xlsx")
	}
	v.OneOf("language", payload.Language, "en", "ar")
	v.OneOf("date_system", payload.DateSystem, string(calendar.Gregorian), string(calendar.Hijri))
	start := v.OptionalDate("start_date", payload.StartDate)
	end := v.OptionalDate("end_date", payload.EndDate)
	if start != nil && end != nil {
		v.DateOrder("start_date", *start, "end_date", *end)
	}
	if v.Reject(w, reqID) {
		return
	}

	built, body, err := h.Service.Generate(r.Context(), user, report.Options{
		Filter:     filter,
		Start:      start,
		End:        end,
		Format:     format,
		Language:   strings.ToLower(strings.TrimSpace(payload.Language)),
		DateSystem: calendar.ParseSystem(payload.DateSystem),
	})
	if err != nil {
		shared.FailDomain(w, err, "report_failed", reqID)
		return
	}
	h.Metrics.ReportGenerated(string(format))
	api.Attachment(w, format.ContentType(), report.Filename(built, format), body)
}

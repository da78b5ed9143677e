package report

import (
	"context"
	"fmt"
	"time"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/platform/calendar"
)

type Service struct {
	Requests       leave.StoreAPI
	Roster         leave.RosterAPI
	ContractMonths int
	Now            func() time.Time
}

func NewService(requests leave.StoreAPI, roster leave.RosterAPI, contractMonths int) *Service {
	return &Service{Requests: requests, Roster: roster, ContractMonths: contractMonths, Now: time.Now}
}

// Generate builds the viewer's team report and renders it in the requested
// format.
func (s *Service) Generate(ctx context.Context, viewer auth.UserContext, opts Options) (Report, []byte, error) {
	if viewer.EmployeeID == "" {
		return Report{}, nil, leave.ErrNoEmployee
	}
	employees, err := s.Roster.ListEmployees(ctx)
	if err != nil {
		return Report{}, nil, err
	}
	requests, err := s.Requests.ListRequests(ctx)
	if err != nil {
		return Report{}, nil, err
	}

	var self *core.Employee
	for i := range employees {
		if employees[i].ID == viewer.EmployeeID {
			self = &employees[i]
			break
		}
	}
	if self == nil {
		return Report{}, nil, leave.ErrNoEmployee
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := leave.DateOnly(now())
	from, to, err := DateRange(opts.Filter, opts.Start, opts.End, self.StartDate, today, s.ContractMonths)
	if err != nil {
		return Report{}, nil, err
	}

	r := Build(Input{
		Viewer:         viewer,
		Employees:      employees,
		Requests:       requests,
		From:           from,
		To:             to,
		Today:          today,
		ContractMonths: s.ContractMonths,
	})
	r.Language = opts.Language
	if r.Language != "ar" {
		r.Language = "en"
	}
	r.DateSystem = opts.DateSystem
	if r.DateSystem == "" {
		r.DateSystem = calendar.Gregorian
	}

	var body []byte
	switch opts.Format {
	case FormatXLSX:
		body, err = RenderXLSX(r)
	case FormatPDF, "":
		body, err = RenderPDF(r)
	default:
		return Report{}, nil, ErrUnknownFormat
	}
	if err != nil {
		return Report{}, nil, fmt.Errorf("generate report: %w", err)
	}
	return r, body, nil
}

// Filename is the attachment name for a rendered report.
func Filename(r Report, format Format) string {
	ext := "pdf"
	if format == FormatXLSX {
		ext = "xlsx"
	}
	return fmt.Sprintf("team_report_%s_%s.%s", r.PeriodStart.Format("20060102"), r.PeriodEnd.Format("20060102"), ext)
}

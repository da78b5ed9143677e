package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/platform/calendar"
)

type fakeRoster struct {
	employees []core.Employee
}

func (f fakeRoster) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	return f.employees, nil
}

func (f fakeRoster) GetEmployee(ctx context.Context, employeeID string) (core.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == employeeID {
			return emp, nil
		}
	}
	return core.Employee{}, core.ErrNotFound
}

type fakeRequests struct {
	requests []leave.Request
	err      error
}

func (f fakeRequests) ListRequests(ctx context.Context) ([]leave.Request, error) {
	return f.requests, f.err
}

func (f fakeRequests) GetRequest(ctx context.Context, requestID int64) (leave.Request, error) {
	return leave.Request{}, leave.ErrNotFound
}

func (f fakeRequests) CreateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	return req, nil
}

func (f fakeRequests) UpdateStatus(ctx context.Context, requestID int64, status leave.Status, reason string, approvalDate *time.Time) error {
	return nil
}

func newTestService(in Input) *Service {
	svc := NewService(fakeRequests{requests: in.Requests}, fakeRoster{employees: in.Employees}, 11)
	svc.Now = func() time.Time { return time.Date(2025, 4, 10, 14, 30, 0, 0, time.UTC) }
	return svc
}

func TestGeneratePDF(t *testing.T) {
	in := fixture()
	svc := newTestService(in)

	r, body, err := svc.Generate(context.Background(), in.Viewer, Options{Filter: FilterLast30, Format: FormatPDF})
	require.NoError(t, err)
	require.NotEmpty(t, body)
	require.Equal(t, day(2025, 3, 11), r.PeriodStart)
	require.Equal(t, day(2025, 4, 10), r.PeriodEnd)
	require.Equal(t, "en", r.Language)
	require.Equal(t, calendar.Gregorian, r.DateSystem)
	require.Len(t, r.Team, 2)
	require.Equal(t, "team_report_20250311_20250410.pdf", Filename(r, FormatPDF))
}

func TestGenerateFullYearUsesViewerContract(t *testing.T) {
	in := fixture()
	svc := newTestService(in)

	r, _, err := svc.Generate(context.Background(), in.Viewer, Options{Filter: FilterFullYear, Format: FormatXLSX, Language: "ar"})
	require.NoError(t, err)
	require.Equal(t, day(2025, 1, 5), r.PeriodStart)
	require.Equal(t, day(2025, 12, 5), r.PeriodEnd)
	require.Equal(t, "ar", r.Language)
}

func TestGenerateErrors(t *testing.T) {
	in := fixture()
	svc := newTestService(in)
	ctx := context.Background()

	_, _, err := svc.Generate(ctx, auth.UserContext{Role: auth.RoleAdmin}, Options{Filter: FilterYTD})
	require.ErrorIs(t, err, leave.ErrNoEmployee)

	_, _, err = svc.Generate(ctx, auth.UserContext{EmployeeID: "ghost"}, Options{Filter: FilterYTD})
	require.ErrorIs(t, err, leave.ErrNoEmployee)

	_, _, err = svc.Generate(ctx, in.Viewer, Options{Filter: FilterYTD, Format: Format("docx")})
	require.ErrorIs(t, err, ErrUnknownFormat)

	boom := errors.New("boom")
	svc.Requests = fakeRequests{err: boom}
	_, _, err = svc.Generate(ctx, in.Viewer, Options{Filter: FilterYTD})
	require.ErrorIs(t, err, boom)
}

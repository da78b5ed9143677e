package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
)

type fakeRoster struct {
	employees []core.Employee
	err       error
}

func (f *fakeRoster) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	return f.employees, f.err
}

func (f *fakeRoster) GetEmployee(ctx context.Context, employeeID string) (core.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == employeeID {
			return emp, nil
		}
	}
	return core.Employee{}, core.ErrNotFound
}

type fakeStore struct {
	requests []Request
	nextID   int64
}

func (f *fakeStore) ListRequests(ctx context.Context) ([]Request, error) {
	return append([]Request(nil), f.requests...), nil
}

func (f *fakeStore) GetRequest(ctx context.Context, requestID int64) (Request, error) {
	for _, req := range f.requests {
		if req.ID == requestID {
			return req, nil
		}
	}
	return Request{}, ErrNotFound
}

func (f *fakeStore) CreateRequest(ctx context.Context, req Request) (Request, error) {
	f.nextID++
	req.ID = f.nextID
	req.Status = StatusPending
	f.requests = append(f.requests, req)
	return req, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, requestID int64, status Status, reason string, approvalDate *time.Time) error {
	for i := range f.requests {
		if f.requests[i].ID == requestID {
			if f.requests[i].Status != StatusPending {
				return ErrInvalidState
			}
			f.requests[i].Status = status
			f.requests[i].RejectionReason = reason
			f.requests[i].ApprovalDate = approvalDate
			return nil
		}
	}
	return ErrNotFound
}

func newTestService() (*Service, *fakeStore) {
	start := day(2025, 1, 5)
	roster := []core.Employee{
		{ID: "M", StartDate: &start, MonthlyVacationEarned: 2.5},
		member("B", "M"),
		member("C", "B"),
	}
	roster[1].StartDate = &start
	roster[1].MonthlyVacationEarned = 2.5

	store := &fakeStore{nextID: 100, requests: []Request{
		{ID: 1, EmployeeID: "C", Status: StatusPending, StartDate: day(2025, 4, 1), EndDate: day(2025, 4, 3), Duration: 3},
		{ID: 2, EmployeeID: "B", Status: StatusApproved, StartDate: day(2025, 4, 2), EndDate: day(2025, 4, 2), Duration: 1},
	}}
	svc := NewService(store, &fakeRoster{employees: roster}, 11)
	svc.Now = func() time.Time { return time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestServiceApprovals(t *testing.T) {
	svc, _ := newTestService()

	queue, err := svc.Approvals(context.Background(), auth.UserContext{EmployeeID: "M", Role: auth.RoleManager})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, int64(1), queue[0].Request.ID)
	require.Len(t, queue[0].Conflicts, 1)
	require.Equal(t, int64(2), queue[0].Conflicts[0].ID)
}

func TestServiceTeamAndSubordinates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	team, err := svc.Team(ctx, auth.UserContext{EmployeeID: "M", Role: auth.RoleManager})
	require.NoError(t, err)
	require.Len(t, team, 2)

	direct, err := svc.Subordinates(ctx, "M", false)
	require.NoError(t, err)
	require.Equal(t, []string{"B"}, direct)
}

func TestServiceDashboard(t *testing.T) {
	svc, _ := newTestService()

	dash, err := svc.Dashboard(context.Background(), auth.UserContext{EmployeeID: "B", Role: auth.RoleManager})
	require.NoError(t, err)
	require.Equal(t, 1, dash.PendingCount)
	require.Equal(t, 1, dash.TeamSize)
	require.True(t, dash.OnLeave)
	// Jan..Mar full months plus half of April, minus one approved day.
	require.InDelta(t, 8.75, dash.Balance.Earned, 1e-9)
	require.InDelta(t, 7.75, dash.Balance.Available, 1e-9)
}

func TestServiceCreateRequest(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	viewer := auth.UserContext{EmployeeID: "M", Role: auth.RoleManager}

	created, err := svc.CreateRequest(ctx, viewer, NewRequest{VacationType: VacationAnnual, StartDate: day(2025, 5, 1), EndDate: day(2025, 5, 3)})
	require.NoError(t, err)
	require.Equal(t, 3, created.Duration)
	require.Equal(t, StatusPending, created.Status)
	require.Len(t, store.requests, 3)

	_, err = svc.CreateRequest(ctx, viewer, NewRequest{VacationType: VacationAnnual, StartDate: day(2025, 5, 1), EndDate: day(2025, 5, 30)})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = svc.CreateRequest(ctx, viewer, NewRequest{VacationType: VacationSick, StartDate: day(2025, 5, 1), EndDate: day(2025, 5, 30)})
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, viewer, NewRequest{VacationType: VacationSick, StartDate: day(2025, 5, 3), EndDate: day(2025, 5, 1)})
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.CreateRequest(ctx, auth.UserContext{Role: auth.RoleAdmin}, NewRequest{VacationType: VacationSick, StartDate: day(2025, 5, 1), EndDate: day(2025, 5, 1)})
	require.ErrorIs(t, err, ErrNoEmployee)
}

func TestServiceUpdateStatus(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	manager := auth.UserContext{EmployeeID: "M", Role: auth.RoleManager}

	_, err := svc.UpdateStatus(ctx, auth.UserContext{EmployeeID: "C", Role: auth.RoleEmployee}, 1, StatusApproved, "")
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateStatus(ctx, manager, 1, StatusApproved, "ignored")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, updated.Status)
	require.NotNil(t, updated.ApprovalDate)
	require.Empty(t, updated.RejectionReason)
	require.Equal(t, StatusApproved, store.requests[0].Status)

	_, err = svc.UpdateStatus(ctx, manager, 1, StatusRejected, "too late")
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.UpdateStatus(ctx, manager, 999, StatusApproved, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServicePropagatesRosterErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&fakeStore{}, &fakeRoster{err: boom}, 11)

	_, err := svc.Approvals(context.Background(), auth.UserContext{EmployeeID: "M", Role: auth.RoleManager})
	require.ErrorIs(t, err, boom)
}

func TestServiceRequestVisibility(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req, err := svc.Request(ctx, auth.UserContext{EmployeeID: "C", Role: auth.RoleEmployee}, 1)
	require.NoError(t, err)
	require.Equal(t, "C", req.EmployeeID)

	_, err = svc.Request(ctx, auth.UserContext{EmployeeID: "M", Role: auth.RoleManager}, 1)
	require.NoError(t, err)

	_, err = svc.Request(ctx, auth.UserContext{EmployeeID: "C", Role: auth.RoleEmployee}, 2)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Request(ctx, auth.UserContext{EmployeeID: "M", Role: auth.RoleManager}, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceForm(t *testing.T) {
	svc, _ := newTestService()
	manager := auth.UserContext{EmployeeID: "M", Role: auth.RoleManager}

	form, err := svc.Form(context.Background(), manager, 2)
	require.NoError(t, err)
	require.Equal(t, "B", form.Employee.ID)
	require.NotNil(t, form.Manager)
	require.Equal(t, "M", form.Manager.ID)
	require.InDelta(t, 7.75, form.Balance.Available, 1e-9)

	_, err = svc.Form(context.Background(), auth.UserContext{EmployeeID: "C", Role: auth.RoleEmployee}, 2)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestServiceFormWithDepartedManager(t *testing.T) {
	svc, store := newTestService()
	roster := svc.Roster.(*fakeRoster)
	roster.employees = append(roster.employees, member("X", "GONE"))
	store.requests = append(store.requests, Request{ID: 3, EmployeeID: "X", Status: StatusPending, StartDate: day(2025, 4, 5), EndDate: day(2025, 4, 5), Duration: 1})

	form, err := svc.Form(context.Background(), auth.UserContext{EmployeeID: "X", Role: auth.RoleEmployee}, 3)
	require.NoError(t, err)
	require.Nil(t, form.Manager)
}

func TestServiceAttendanceToday(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	got, err := svc.AttendanceToday(ctx, auth.UserContext{EmployeeID: "M", Role: auth.RoleManager})
	require.NoError(t, err)
	require.Equal(t, day(2025, 4, 2), got.Date)
	require.Equal(t, AttendancePresent, got.Me.Status)
	require.Len(t, got.Team, 2)
	require.Equal(t, "B", got.Team[0].EmployeeID)
	require.Equal(t, AttendanceOnLeave, got.Team[0].Status)
	require.Equal(t, day(2025, 4, 2), *got.Team[0].Until)
	require.Equal(t, AttendancePresent, got.Team[1].Status, "a pending request does not mark C away")
	require.Equal(t, 1, got.OnLeaveCount)

	got, err = svc.AttendanceToday(ctx, auth.UserContext{EmployeeID: "B", Role: auth.RoleEmployee})
	require.NoError(t, err)
	require.Equal(t, AttendanceOnLeave, got.Me.Status)
	require.Zero(t, got.OnLeaveCount)

	got, err = svc.AttendanceToday(ctx, auth.UserContext{UserID: "u-admin", Role: auth.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, AttendanceUnknown, got.Me.Status)
	require.Len(t, got.Team, 3)
}

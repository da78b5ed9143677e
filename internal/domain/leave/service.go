package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/hierarchy"
)

// Service loads a fresh roster and request snapshot per call and hands it to
// the pure scope functions. Nothing derived is kept between calls.
type Service struct {
	Store          StoreAPI
	Roster         RosterAPI
	ContractMonths int
	Now            func() time.Time
}

func NewService(store StoreAPI, roster RosterAPI, contractMonths int) *Service {
	return &Service{Store: store, Roster: roster, ContractMonths: contractMonths, Now: time.Now}
}

func (s *Service) today() time.Time {
	if s.Now == nil {
		return DateOnly(time.Now())
	}
	return DateOnly(s.Now())
}

type snapshot struct {
	employees []core.Employee
	requests  []Request
}

func (s *Service) load(ctx context.Context) (snapshot, error) {
	employees, err := s.Roster.ListEmployees(ctx)
	if err != nil {
		return snapshot{}, err
	}
	requests, err := s.Store.ListRequests(ctx)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{employees: employees, requests: requests}, nil
}

func (s *Service) Subordinates(ctx context.Context, managerID string, includeIndirect bool) ([]string, error) {
	employees, err := s.Roster.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Subordinates(managerID, employees, includeIndirect), nil
}

func (s *Service) Team(ctx context.Context, viewer auth.UserContext) ([]core.Employee, error) {
	employees, err := s.Roster.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return NewScope(viewer, employees).Members(employees), nil
}

func (s *Service) Requests(ctx context.Context, viewer auth.UserContext) ([]Request, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Visible(viewer, NewScope(viewer, snap.employees), snap.requests), nil
}

func (s *Service) Approvals(ctx context.Context, viewer auth.UserContext) ([]Approval, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ApprovalQueue(NewScope(viewer, snap.employees), snap.requests), nil
}

func (s *Service) EmployeeBalance(ctx context.Context, employeeID string) (BalanceSummary, error) {
	emp, err := s.Roster.GetEmployee(ctx, employeeID)
	if err != nil {
		return BalanceSummary{}, err
	}
	requests, err := s.Store.ListRequests(ctx)
	if err != nil {
		return BalanceSummary{}, err
	}
	return Balance(emp, requests, s.today(), s.ContractMonths), nil
}

func (s *Service) Dashboard(ctx context.Context, viewer auth.UserContext) (Dashboard, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	today := s.today()
	scope := NewScope(viewer, snap.employees)

	var out Dashboard
	for _, emp := range snap.employees {
		if emp.ID == viewer.EmployeeID {
			out.Balance = Balance(emp, snap.requests, today, s.ContractMonths)
			break
		}
	}
	out.PendingCount = len(PendingApprovals(scope, snap.requests))
	out.TeamSize = scope.Size()
	if req, ok := OnLeave(viewer.EmployeeID, snap.requests, today); ok {
		out.OnLeave = true
		out.OnLeaveType = req.VacationType
	}
	return out, nil
}

// Request returns one request when viewer filed it or it sits in their scope.
func (s *Service) Request(ctx context.Context, viewer auth.UserContext, requestID int64) (Request, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.EmployeeID == viewer.EmployeeID {
		return req, nil
	}
	employees, err := s.Roster.ListEmployees(ctx)
	if err != nil {
		return Request{}, err
	}
	if !NewScope(viewer, employees).Contains(req.EmployeeID) {
		return Request{}, ErrForbidden
	}
	return req, nil
}

// Form gathers a printable vacation form under the same visibility rule as
// Request. A manager who left the roster is printed blank.
func (s *Service) Form(ctx context.Context, viewer auth.UserContext, requestID int64) (Form, error) {
	req, err := s.Request(ctx, viewer, requestID)
	if err != nil {
		return Form{}, err
	}
	snap, err := s.load(ctx)
	if err != nil {
		return Form{}, err
	}
	form := Form{Request: req}
	found := false
	for _, emp := range snap.employees {
		if emp.ID == req.EmployeeID {
			form.Employee = emp
			found = true
			break
		}
	}
	if !found {
		return Form{}, core.ErrNotFound
	}
	if form.Employee.ManagerID != nil {
		for _, emp := range snap.employees {
			if emp.ID == *form.Employee.ManagerID {
				manager := emp
				form.Manager = &manager
				break
			}
		}
	}
	form.Balance = Balance(form.Employee, snap.requests, s.today(), s.ContractMonths)
	return form, nil
}

// AttendanceToday reports who is away today: the viewer first, then every
// in-scope employee in roster order.
func (s *Service) AttendanceToday(ctx context.Context, viewer auth.UserContext) (AttendanceToday, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return AttendanceToday{}, err
	}
	today := s.today()
	out := AttendanceToday{
		Date: today,
		Me:   Attendance{EmployeeID: viewer.EmployeeID, Status: AttendanceUnknown},
		Team: []Attendance{},
	}
	scope := NewScope(viewer, snap.employees)
	for _, emp := range snap.employees {
		if emp.ID != viewer.EmployeeID && !scope.Contains(emp.ID) {
			continue
		}
		entry := Attendance{EmployeeID: emp.ID, NameEN: emp.NameEN(), NameAR: emp.NameAR(), Status: AttendancePresent}
		if req, ok := OnLeave(emp.ID, snap.requests, today); ok {
			until := req.EndDate
			entry.Status = AttendanceOnLeave
			entry.VacationType = req.VacationType
			entry.Until = &until
		}
		if emp.ID == viewer.EmployeeID {
			out.Me = entry
			continue
		}
		if entry.Status == AttendanceOnLeave {
			out.OnLeaveCount++
		}
		out.Team = append(out.Team, entry)
	}
	return out, nil
}

// OnLeave finds an approved request of employeeID covering day.
func OnLeave(employeeID string, requests []Request, day time.Time) (Request, bool) {
	for _, req := range requests {
		if req.EmployeeID == employeeID && req.Status == StatusApproved && req.Covers(day) {
			return req, true
		}
	}
	return Request{}, false
}

func (s *Service) CreateRequest(ctx context.Context, viewer auth.UserContext, payload NewRequest) (Request, error) {
	if viewer.EmployeeID == "" {
		return Request{}, ErrNoEmployee
	}
	days, err := CalculateDays(payload.StartDate, payload.EndDate)
	if err != nil {
		return Request{}, err
	}

	emp, err := s.Roster.GetEmployee(ctx, viewer.EmployeeID)
	if err != nil {
		return Request{}, err
	}
	requests, err := s.Store.ListRequests(ctx)
	if err != nil {
		return Request{}, err
	}
	balance := Balance(emp, requests, s.today(), s.ContractMonths)
	if err := ValidateNewRequest(payload.VacationType, days, balance.Available); err != nil {
		return Request{}, err
	}

	return s.Store.CreateRequest(ctx, Request{
		EmployeeID:   viewer.EmployeeID,
		VacationType: payload.VacationType,
		StartDate:    DateOnly(payload.StartDate),
		EndDate:      DateOnly(payload.EndDate),
		Duration:     days,
		Status:       StatusPending,
		Reason:       payload.Reason,
	})
}

func (s *Service) UpdateStatus(ctx context.Context, viewer auth.UserContext, requestID int64, next Status, reason string) (Request, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Request{}, err
	}
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := CheckTransition(viewer, NewScope(viewer, snap.employees), req, next, reason); err != nil {
		return Request{}, err
	}

	var approvalDate *time.Time
	if next == StatusApproved {
		today := s.today()
		approvalDate = &today
	}
	if next != StatusRejected {
		reason = ""
	}
	if err := s.Store.UpdateStatus(ctx, requestID, next, reason, approvalDate); err != nil {
		if errors.Is(err, ErrInvalidState) {
			return Request{}, err
		}
		return Request{}, fmt.Errorf("update status: %w", err)
	}

	req.Status = next
	req.RejectionReason = reason
	req.ApprovalDate = approvalDate
	return req, nil
}

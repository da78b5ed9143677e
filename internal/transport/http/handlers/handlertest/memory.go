// Package handlertest provides in-memory roster and leave stores for HTTP
// tests.
package handlertest

import (
	"context"
	"sync"
	"strings"
	"time"

	"github.com/google/uuid"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
)

type Roster struct {
	Employees []core.Employee
	Units     []core.Unit
	Err       error
}

func (r *Roster) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]core.Employee(nil), r.Employees...), nil
}

func (r *Roster) GetEmployee(ctx context.Context, employeeID string) (core.Employee, error) {
	if r.Err != nil {
		return core.Employee{}, r.Err
	}
	for _, emp := range r.Employees {
		if emp.ID == employeeID {
			return emp, nil
		}
	}
	return core.Employee{}, core.ErrNotFound
}

func (r *Roster) ListUnits(ctx context.Context) ([]core.Unit, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]core.Unit{}, r.Units...), nil
}

// CreateEmployee gives the new record a fresh login ID. Every roster entry
// counts as one login.
func (r *Roster) CreateEmployee(ctx context.Context, emp core.Employee, passwordHash string) (core.Employee, error) {
	if r.Err != nil {
		return core.Employee{}, r.Err
	}
	for _, existing := range r.Employees {
		if existing.ID == emp.ID || (emp.Email != "" && strings.EqualFold(existing.Email, emp.Email)) {
			return core.Employee{}, core.ErrConflict
		}
	}
	emp.UserID = uuid.NewString()
	r.Employees = append(r.Employees, emp)
	return emp, nil
}

func (r *Roster) UpdateEmployee(ctx context.Context, emp core.Employee) error {
	if r.Err != nil {
		return r.Err
	}
	for i := range r.Employees {
		if r.Employees[i].ID == emp.ID {
			r.Employees[i] = emp
			return nil
		}
	}
	return core.ErrNotFound
}

func (r *Roster) DeleteUser(ctx context.Context, userID string) error {
	if r.Err != nil {
		return r.Err
	}
	for i := range r.Employees {
		if r.Employees[i].UserID == userID {
			r.Employees = append(r.Employees[:i], r.Employees[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (r *Roster) CreateUnit(ctx context.Context, unit core.Unit) (core.Unit, error) {
	if r.Err != nil {
		return core.Unit{}, r.Err
	}
	unit.ID = 1
	for _, existing := range r.Units {
		if existing.ID >= unit.ID {
			unit.ID = existing.ID + 1
		}
	}
	r.Units = append(r.Units, unit)
	return unit, nil
}

func (r *Roster) UpdateUnit(ctx context.Context, unit core.Unit) error {
	if r.Err != nil {
		return r.Err
	}
	for i := range r.Units {
		if r.Units[i].ID == unit.ID {
			r.Units[i] = unit
			return nil
		}
	}
	return core.ErrNotFound
}

func (r *Roster) DeleteUnit(ctx context.Context, unitID int) error {
	if r.Err != nil {
		return r.Err
	}
	for _, emp := range r.Employees {
		if emp.UnitID != nil && *emp.UnitID == unitID {
			return core.ErrUnitInUse
		}
	}
	for i := range r.Units {
		if r.Units[i].ID == unitID {
			r.Units = append(r.Units[:i], r.Units[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (r *Roster) UserCount(ctx context.Context) (int, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	return len(r.Employees), nil
}

func (r *Roster) Initialize(ctx context.Context, admin core.Employee, passwordHash string) (core.Employee, error) {
	if len(r.Employees) > 0 {
		return core.Employee{}, core.ErrAlreadySetUp
	}
	return r.CreateEmployee(ctx, admin, passwordHash)
}

type Requests struct {
	mu       sync.Mutex
	Requests []leave.Request
	nextID   int64
}

func (s *Requests) ListRequests(ctx context.Context) ([]leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]leave.Request{}, s.Requests...), nil
}

func (s *Requests) GetRequest(ctx context.Context, requestID int64) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.Requests {
		if req.ID == requestID {
			return req, nil
		}
	}
	return leave.Request{}, leave.ErrNotFound
}

func (s *Requests) CreateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Requests {
		if existing.ID > s.nextID {
			s.nextID = existing.ID
		}
	}
	s.nextID++
	req.ID = s.nextID
	req.Status = leave.StatusPending
	req.CreatedAt = time.Now().UTC()
	s.Requests = append(s.Requests, req)
	return req, nil
}

func (s *Requests) UpdateStatus(ctx context.Context, requestID int64, status leave.Status, rejectionReason string, approvalDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Requests {
		if s.Requests[i].ID != requestID {
			continue
		}
		if s.Requests[i].Status != leave.StatusPending {
			return leave.ErrInvalidState
		}
		s.Requests[i].Status = status
		s.Requests[i].RejectionReason = rejectionReason
		s.Requests[i].ApprovalDate = approvalDate
		return nil
	}
	return leave.ErrNotFound
}

// Employee builds a roster entry reporting to managerID, or a top-level one
// when managerID is empty.
func Employee(id, managerID string, role auth.Role) core.Employee {
	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	emp := core.Employee{
		ID:                    id,
		FirstNameEN:           id,
		LastNameEN:            "Tester",
		FirstNameAR:           id,
		LastNameAR:            "مختبر",
		Role:                  role,
		StartDate:             &start,
		MonthlyVacationEarned: 2.5,
	}
	if managerID != "" {
		m := managerID
		emp.ManagerID = &m
	}
	return emp
}

// Date is a UTC calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixture is a small faculty: admin A, dean D over manager M, M over B, and B
// over C. E reports to nobody in the roster.
func Fixture() (*Roster, *Requests) {
	roster := &Roster{
		Employees: []core.Employee{
			Employee("A", "", auth.RoleAdmin),
			Employee("D", "", auth.RoleDean),
			Employee("M", "D", auth.RoleManager),
			Employee("B", "M", auth.RoleEmployee),
			Employee("C", "B", auth.RoleEmployee),
			Employee("E", "GONE", auth.RoleEmployee),
		},
		Units: []core.Unit{{ID: 1, NameEN: "Computer Science", NameAR: "علوم الحاسب"}},
	}
	requests := &Requests{Requests: []leave.Request{
		{ID: 1, EmployeeID: "B", VacationType: leave.VacationAnnual, StartDate: Date(2025, 4, 7), EndDate: Date(2025, 4, 9), Duration: 3, Status: leave.StatusPending},
		{ID: 2, EmployeeID: "C", VacationType: leave.VacationSick, StartDate: Date(2025, 4, 8), EndDate: Date(2025, 4, 8), Duration: 1, Status: leave.StatusApproved},
		{ID: 3, EmployeeID: "E", VacationType: leave.VacationAnnual, StartDate: Date(2025, 4, 7), EndDate: Date(2025, 4, 7), Duration: 1, Status: leave.StatusPending},
		{ID: 4, EmployeeID: "M", VacationType: leave.VacationAnnual, StartDate: Date(2025, 4, 1), EndDate: Date(2025, 4, 2), Duration: 2, Status: leave.StatusPending},
	}}
	return roster, requests
}

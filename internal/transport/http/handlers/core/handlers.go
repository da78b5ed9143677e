package corehandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"leaveportal/internal/domain/audit"
	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/platform/metrics"
	"leaveportal/internal/transport/http/api"
	"leaveportal/internal/transport/http/middleware"
	"leaveportal/internal/transport/http/shared"
)

type Roster interface {
	ListEmployees(ctx context.Context) ([]core.Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	ListUnits(ctx context.Context) ([]core.Unit, error)
}

// Directory is the roster plus the administrative writes behind it.
type Directory interface {
	Roster
	CreateEmployee(ctx context.Context, emp core.Employee, passwordHash string) (core.Employee, error)
	UpdateEmployee(ctx context.Context, emp core.Employee) error
	DeleteUser(ctx context.Context, userID string) error
	CreateUnit(ctx context.Context, unit core.Unit) (core.Unit, error)
	UpdateUnit(ctx context.Context, unit core.Unit) error
	DeleteUnit(ctx context.Context, unitID int) error
	UserCount(ctx context.Context) (int, error)
	Initialize(ctx context.Context, admin core.Employee, passwordHash string) (core.Employee, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Handler struct {
	Roster  Directory
	Leave   *leave.Service
	Audit   AuditRecorder
	Metrics *metrics.Collector
}

func NewHandler(dir Directory, leaveSvc *leave.Service, recorder AuditRecorder, collector *metrics.Collector) *Handler {
	return &Handler{Roster: dir, Leave: leaveSvc, Audit: recorder, Metrics: collector}
}

// RegisterPublicRoutes mounts first-run setup, which has no user to
// authenticate yet.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/setup/status", h.handleSetupStatus)
	r.Post("/setup/initialize", h.handleInitialize)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermEmployeesRead))
		r.Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreateEmployee)
		r.Get("/{employeeID}", h.handleGetEmployee)
		r.Put("/{employeeID}", h.handleUpdateEmployee)
		r.Get("/{employeeID}/subordinates", h.handleSubordinates)
	})
	r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Delete("/users/{userID}", h.handleDeleteUser)
	r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/team", h.handleTeam)
	r.Route("/units", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermUnitsRead)).Get("/", h.handleListUnits)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermUnitsWrite))
			r.Post("/", h.handleCreateUnit)
			r.Put("/{unitID}", h.handleUpdateUnit)
			r.Delete("/{unitID}", h.handleDeleteUnit)
		})
	})
}

type employeeDetail struct {
	core.Employee
	Balance *leave.BalanceSummary `json:"balance,omitempty"`
}

// visibility decides how much of an employee record the viewer sees: full
// records for themselves and their scope, the public directory view otherwise.
func visibility(user auth.UserContext, scope leave.Scope, emp core.Employee) core.Employee {
	if emp.ID == user.EmployeeID || scope.Contains(emp.ID) {
		return emp
	}
	return emp.Public()
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "employee_list_failed", reqID)
		return
	}
	scope := leave.NewScope(user, employees)
	out := make([]core.Employee, 0, len(employees))
	for _, emp := range employees {
		out = append(out, visibility(user, scope, emp))
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "employee_fetch_failed", reqID)
		return
	}
	var found *core.Employee
	for i := range employees {
		if employees[i].ID == employeeID {
			found = &employees[i]
			break
		}
	}
	if found == nil {
		shared.FailDomain(w, core.ErrNotFound, "employee_fetch_failed", reqID)
		return
	}

	scope := leave.NewScope(user, employees)
	if found.ID != user.EmployeeID && !scope.Contains(found.ID) {
		api.Success(w, employeeDetail{Employee: found.Public()}, reqID)
		return
	}

	balance, err := h.Leave.EmployeeBalance(r.Context(), found.ID)
	if err != nil {
		shared.FailDomain(w, err, "balance_failed", reqID)
		return
	}
	api.Success(w, employeeDetail{Employee: *found, Balance: &balance}, reqID)
}

func (h *Handler) handleSubordinates(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	managerID := chi.URLParam(r, "employeeID")

	includeIndirect := true
	if raw := r.URL.Query().Get("indirect"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			shared.FailField(w, reqID, "indirect", "must be a boolean")
			return
		}
		includeIndirect = parsed
	}

	// Non-admins may only expand themselves or someone already below them.
	if !user.Role.GlobalScope() && managerID != user.EmployeeID {
		employees, err := h.Roster.ListEmployees(r.Context())
		if err != nil {
			shared.FailDomain(w, err, "subordinates_failed", reqID)
			return
		}
		if !leave.NewScope(user, employees).Contains(managerID) {
			shared.FailDomain(w, leave.ErrForbidden, "subordinates_failed", reqID)
			return
		}
	}

	ids, err := h.Leave.Subordinates(r.Context(), managerID, includeIndirect)
	if err != nil {
		shared.FailDomain(w, err, "subordinates_failed", reqID)
		return
	}
	api.Success(w, map[string]any{
		"manager_id":       managerID,
		"include_indirect": includeIndirect,
		"subordinates":     ids,
	}, reqID)
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	team, err := h.Leave.Team(r.Context(), user)
	if err != nil {
		shared.FailDomain(w, err, "team_failed", reqID)
		return
	}
	h.Metrics.ObserveScope(len(team))
	api.Success(w, team, reqID)
}

func (h *Handler) handleListUnits(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	units, err := h.Roster.ListUnits(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "unit_list_failed", reqID)
		return
	}
	api.Success(w, units, reqID)
}

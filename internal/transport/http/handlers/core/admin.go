package corehandler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"leaveportal/internal/domain/audit"
	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/hierarchy"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/transport/http/api"
	"leaveportal/internal/transport/http/middleware"
	"leaveportal/internal/transport/http/shared"
)

const (
	maxNameLength         = 100
	minPasswordLength     = 8
	defaultMonthlyAccrual = 2.5
)

type employeeRequest struct {
	Email                 string   `json:"email"`
	Password              string   `json:"password"`
	Role                  string   `json:"role"`
	EmployeeID            string   `json:"employee_id"`
	FirstNameAR           string   `json:"first_name_ar"`
	LastNameAR            string   `json:"last_name_ar"`
	FirstNameEN           string   `json:"first_name_en"`
	LastNameEN            string   `json:"last_name_en"`
	PositionAR            string   `json:"position_ar"`
	PositionEN            string   `json:"position_en"`
	UnitID                *int     `json:"unit_id"`
	ManagerID             string   `json:"manager_id"`
	StartDate             string   `json:"start_date"`
	MonthlyVacationEarned *float64 `json:"monthly_vacation_earned"`
}

// employeePatch carries the fields of a PUT. A key that is present with a
// null value clears the field.
type employeePatch struct {
	FirstNameAR           *string  `json:"first_name_ar"`
	LastNameAR            *string  `json:"last_name_ar"`
	FirstNameEN           *string  `json:"first_name_en"`
	LastNameEN            *string  `json:"last_name_en"`
	PositionAR            *string  `json:"position_ar"`
	PositionEN            *string  `json:"position_en"`
	UnitID                *int     `json:"unit_id"`
	ManagerID             *string  `json:"manager_id"`
	StartDate             *string  `json:"start_date"`
	MonthlyVacationEarned *float64 `json:"monthly_vacation_earned"`
	Role                  *string  `json:"role"`
}

type unitRequest struct {
	NameEN *string `json:"name_en"`
	NameAR *string `json:"name_ar"`
}

type setupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstNameAR string `json:"first_name_ar"`
	LastNameAR  string `json:"last_name_ar"`
	FirstNameEN string `json:"first_name_en"`
	LastNameEN  string `json:"last_name_en"`
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         middleware.ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func findEmployee(employees []core.Employee, id string) (core.Employee, bool) {
	for _, emp := range employees {
		if emp.ID == id {
			return emp, true
		}
	}
	return core.Employee{}, false
}

func hasUnit(units []core.Unit, id int) bool {
	for _, u := range units {
		if u.ID == id {
			return true
		}
	}
	return false
}

// checkName applies the name rules to a field that is present.
func checkName(v *shared.Validator, field string, value *string) {
	if value == nil {
		return
	}
	v.Required(field, *value, "is required")
	v.MaxLen(field, *value, maxNameLength)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	v.Required("password", payload.Password, "is required")
	v.MinLen("password", payload.Password, minPasswordLength)
	role, _ := v.Role("role", payload.Role)
	for field, value := range map[string]string{
		"first_name_ar": payload.FirstNameAR,
		"last_name_ar":  payload.LastNameAR,
		"first_name_en": payload.FirstNameEN,
		"last_name_en":  payload.LastNameEN,
		"position_ar":   payload.PositionAR,
		"position_en":   payload.PositionEN,
	} {
		checkName(v, field, &value)
	}
	start := v.OptionalDate("start_date", payload.StartDate)
	if role != "" && role != auth.RoleAdmin {
		if payload.UnitID == nil {
			v.Add("unit_id", "is required for non-admin roles")
		}
		v.Required("manager_id", payload.ManagerID, "is required for non-admin roles")
		v.Required("start_date", payload.StartDate, "is required for non-admin roles")
	}
	monthly := defaultMonthlyAccrual
	if payload.MonthlyVacationEarned != nil {
		monthly = *payload.MonthlyVacationEarned
	}
	v.NonNegative("monthly_vacation_earned", monthly)
	if v.Reject(w, reqID) {
		return
	}

	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "employee_create_failed", reqID)
		return
	}
	emp := core.Employee{
		ID:                    strings.TrimSpace(payload.EmployeeID),
		FirstNameAR:           payload.FirstNameAR,
		LastNameAR:            payload.LastNameAR,
		FirstNameEN:           payload.FirstNameEN,
		LastNameEN:            payload.LastNameEN,
		PositionAR:            payload.PositionAR,
		PositionEN:            payload.PositionEN,
		UnitID:                payload.UnitID,
		Role:                  role,
		Email:                 strings.TrimSpace(payload.Email),
		StartDate:             start,
		MonthlyVacationEarned: monthly,
	}
	if emp.ID == "" {
		emp.ID = core.NextEmployeeID(employees)
	} else if _, taken := findEmployee(employees, emp.ID); taken {
		shared.FailDomain(w, core.ErrConflict, "employee_create_failed", reqID)
		return
	}
	if managerID := strings.TrimSpace(payload.ManagerID); managerID != "" {
		if _, ok := findEmployee(employees, managerID); !ok {
			shared.FailField(w, reqID, "manager_id", "is not a known employee")
			return
		}
		emp.ManagerID = &managerID
	}
	if !h.unitExists(w, r, emp.UnitID) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		shared.FailDomain(w, err, "employee_create_failed", reqID)
		return
	}
	created, err := h.Roster.CreateEmployee(r.Context(), emp, hash)
	if err != nil {
		shared.FailDomain(w, err, "employee_create_failed", reqID)
		return
	}
	h.record(r, user.UserID, audit.ActionEmployeeCreate, audit.EntityEmployee, created.ID, nil, created)
	slog.Info("employee created", "employeeId", created.ID, "role", created.Role, "requestId", reqID)
	api.Created(w, created, reqID)
}

// unitExists writes the validation error itself when unitID names no unit.
func (h *Handler) unitExists(w http.ResponseWriter, r *http.Request, unitID *int) bool {
	if unitID == nil {
		return true
	}
	reqID := middleware.GetRequestID(r.Context())
	units, err := h.Roster.ListUnits(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "unit_list_failed", reqID)
		return false
	}
	if !hasUnit(units, *unitID) {
		shared.FailField(w, reqID, "unit_id", "is not a known unit")
		return false
	}
	return true
}

// handleUpdateEmployee lets administrators change any field. A manager may
// only move the start date of a direct report.
func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	var keys map[string]json.RawMessage
	var patch employeePatch
	if json.Unmarshal(body, &keys) != nil || json.Unmarshal(body, &patch) != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if len(keys) == 0 {
		shared.FailField(w, reqID, "body", "must change at least one field")
		return
	}

	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "employee_update_failed", reqID)
		return
	}
	target, ok := findEmployee(employees, employeeID)
	if !ok {
		shared.FailDomain(w, core.ErrNotFound, "employee_update_failed", reqID)
		return
	}

	if !auth.HasPermission(user.Role, auth.PermEmployeesWrite) {
		_, onlyStart := keys["start_date"]
		if user.Role != auth.RoleManager || !target.ReportsTo(user.EmployeeID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not authorized to update this employee", reqID)
			return
		}
		if !onlyStart || len(keys) != 1 {
			api.Fail(w, http.StatusForbidden, "forbidden", "managers can only update start_date", reqID)
			return
		}
	}

	updated := target
	v := shared.NewValidator()
	checkName(v, "first_name_ar", patch.FirstNameAR)
	checkName(v, "last_name_ar", patch.LastNameAR)
	checkName(v, "first_name_en", patch.FirstNameEN)
	checkName(v, "last_name_en", patch.LastNameEN)
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&updated.FirstNameAR, patch.FirstNameAR)
	assign(&updated.LastNameAR, patch.LastNameAR)
	assign(&updated.FirstNameEN, patch.FirstNameEN)
	assign(&updated.LastNameEN, patch.LastNameEN)
	if patch.PositionAR != nil {
		v.MaxLen("position_ar", *patch.PositionAR, maxNameLength)
		updated.PositionAR = *patch.PositionAR
	}
	if patch.PositionEN != nil {
		v.MaxLen("position_en", *patch.PositionEN, maxNameLength)
		updated.PositionEN = *patch.PositionEN
	}
	if _, ok := keys["start_date"]; ok {
		updated.StartDate = nil
		if patch.StartDate != nil {
			updated.StartDate = v.OptionalDate("start_date", *patch.StartDate)
		}
	}
	if patch.MonthlyVacationEarned != nil {
		v.NonNegative("monthly_vacation_earned", *patch.MonthlyVacationEarned)
		updated.MonthlyVacationEarned = *patch.MonthlyVacationEarned
	}
	if patch.Role != nil {
		if role, ok := v.Role("role", *patch.Role); ok {
			updated.Role = role
		}
	}
	if _, ok := keys["unit_id"]; ok {
		updated.UnitID = patch.UnitID
	}
	if _, ok := keys["manager_id"]; ok {
		updated.ManagerID = nil
		if patch.ManagerID != nil && strings.TrimSpace(*patch.ManagerID) != "" {
			managerID := strings.TrimSpace(*patch.ManagerID)
			if _, known := findEmployee(employees, managerID); !known {
				v.Add("manager_id", "is not a known employee")
			} else if hierarchy.WouldCycle(target.ID, managerID, employees) {
				v.Add("manager_id", "would create a reporting cycle")
			}
			updated.ManagerID = &managerID
		}
	}
	if v.Reject(w, reqID) {
		return
	}
	if _, ok := keys["unit_id"]; ok && !h.unitExists(w, r, updated.UnitID) {
		return
	}

	if err := h.Roster.UpdateEmployee(r.Context(), updated); err != nil {
		shared.FailDomain(w, err, "employee_update_failed", reqID)
		return
	}
	fresh, err := h.Roster.GetEmployee(r.Context(), target.ID)
	if err != nil {
		shared.FailDomain(w, err, "employee_update_failed", reqID)
		return
	}
	h.record(r, user.UserID, audit.ActionEmployeeUpdate, audit.EntityEmployee, target.ID, target, fresh)
	api.Success(w, fresh, reqID)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		shared.FailField(w, reqID, "user_id", "must be a UUID")
		return
	}
	if userID.String() == user.UserID {
		api.Fail(w, http.StatusConflict, "self_delete", "you cannot delete your own account", reqID)
		return
	}
	if err := h.Roster.DeleteUser(r.Context(), userID.String()); err != nil {
		shared.FailDomain(w, err, "user_delete_failed", reqID)
		return
	}
	h.record(r, user.UserID, audit.ActionUserDelete, audit.EntityUser, userID.String(), nil, nil)
	slog.Info("user deleted", "userId", userID.String(), "requestId", reqID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "unitID"))
	if err != nil || id <= 0 {
		shared.FailField(w, middleware.GetRequestID(r.Context()), "unit_id", "must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload unitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	var unit core.Unit
	if payload.NameEN != nil {
		unit.NameEN = strings.TrimSpace(*payload.NameEN)
	}
	if payload.NameAR != nil {
		unit.NameAR = strings.TrimSpace(*payload.NameAR)
	}
	checkName(v, "name_en", &unit.NameEN)
	checkName(v, "name_ar", &unit.NameAR)
	if v.Reject(w, reqID) {
		return
	}

	created, err := h.Roster.CreateUnit(r.Context(), unit)
	if err != nil {
		shared.FailDomain(w, err, "unit_create_failed", reqID)
		return
	}
	h.record(r, user.UserID, audit.ActionUnitCreate, audit.EntityUnit, strconv.Itoa(created.ID), nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	unitID, ok := h.unitParam(w, r)
	if !ok {
		return
	}

	var payload unitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	units, err := h.Roster.ListUnits(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "unit_update_failed", reqID)
		return
	}
	var before *core.Unit
	for i := range units {
		if units[i].ID == unitID {
			before = &units[i]
		}
	}
	if before == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "unit not found", reqID)
		return
	}

	unit := *before
	if payload.NameEN != nil {
		unit.NameEN = strings.TrimSpace(*payload.NameEN)
	}
	if payload.NameAR != nil {
		unit.NameAR = strings.TrimSpace(*payload.NameAR)
	}
	v := shared.NewValidator()
	checkName(v, "name_en", &unit.NameEN)
	checkName(v, "name_ar", &unit.NameAR)
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Roster.UpdateUnit(r.Context(), unit); err != nil {
		shared.FailDomain(w, err, "unit_update_failed", reqID)
		return
	}
	h.record(r, user.UserID, audit.ActionUnitUpdate, audit.EntityUnit, strconv.Itoa(unit.ID), *before, unit)
	api.Success(w, unit, reqID)
}

// handleDeleteUnit names up to three of the employees still assigned when it
// refuses.
func (h *Handler) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	unitID, ok := h.unitParam(w, r)
	if !ok {
		return
	}

	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "unit_delete_failed", reqID)
		return
	}
	names := []string{}
	for _, emp := range employees {
		if emp.UnitID != nil && *emp.UnitID == unitID {
			names = append(names, emp.NameEN())
		}
	}
	if len(names) > 0 {
		shown := names
		if len(shown) > 3 {
			shown = shown[:3]
		}
		message := fmt.Sprintf("cannot delete unit: %d employee(s) assigned (%s", len(names), strings.Join(shown, ", "))
		if len(names) > 3 {
			message += fmt.Sprintf(" and %d more", len(names)-3)
		}
		api.FailWithDetails(w, http.StatusConflict, "unit_in_use", message+")",
			map[string]any{"employees": names}, reqID)
		return
	}

	if err := h.Roster.DeleteUnit(r.Context(), unitID); err != nil {
		shared.FailDomain(w, err, "unit_delete_failed", reqID)
		return
	}
	h.record(r, user.UserID, audit.ActionUnitDelete, audit.EntityUnit, strconv.Itoa(unitID), nil, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetupStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	count, err := h.Roster.UserCount(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "setup_status_failed", reqID)
		return
	}
	api.Success(w, map[string]bool{"is_setup": count > 0}, reqID)
}

// handleInitialize creates the first administrator of an empty portal.
func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload setupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	v.Required("password", payload.Password, "is required")
	v.MinLen("password", payload.Password, minPasswordLength)
	checkName(v, "first_name_ar", &payload.FirstNameAR)
	checkName(v, "last_name_ar", &payload.LastNameAR)
	checkName(v, "first_name_en", &payload.FirstNameEN)
	checkName(v, "last_name_en", &payload.LastNameEN)
	if v.Reject(w, reqID) {
		return
	}

	count, err := h.Roster.UserCount(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "setup_failed", reqID)
		return
	}
	if count > 0 {
		shared.FailDomain(w, core.ErrAlreadySetUp, "setup_failed", reqID)
		return
	}
	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		shared.FailDomain(w, err, "setup_failed", reqID)
		return
	}
	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		shared.FailDomain(w, err, "setup_failed", reqID)
		return
	}
	today := leave.DateOnly(h.Leave.Now())
	admin, err := h.Roster.Initialize(r.Context(), core.Employee{
		ID:          core.NextEmployeeID(employees),
		FirstNameAR: payload.FirstNameAR,
		LastNameAR:  payload.LastNameAR,
		FirstNameEN: payload.FirstNameEN,
		LastNameEN:  payload.LastNameEN,
		PositionAR:  "مسؤول النظام",
		PositionEN:  "System Admin",
		Role:        auth.RoleAdmin,
		Email:       strings.TrimSpace(payload.Email),
		StartDate:   &today,
	}, hash)
	if err != nil {
		shared.FailDomain(w, err, "setup_failed", reqID)
		return
	}
	h.record(r, admin.UserID, audit.ActionSetup, audit.EntityUser, admin.UserID, nil, admin)
	slog.Info("portal initialized", "employeeId", admin.ID, "requestId", reqID)
	api.Created(w, admin, reqID)
}

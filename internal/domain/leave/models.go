package leave

import (
	"strings"
	"time"

	"leaveportal/internal/domain/core"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// ParseStatus accepts any casing of the four known statuses.
func ParseStatus(value string) (Status, bool) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled} {
		if strings.EqualFold(strings.TrimSpace(value), string(s)) {
			return s, true
		}
	}
	return "", false
}

type VacationType string

const (
	VacationAnnual    VacationType = "annual"
	VacationSick      VacationType = "sick"
	VacationEmergency VacationType = "emergency"
	VacationExams     VacationType = "exams"
)

var VacationTypes = []VacationType{VacationAnnual, VacationSick, VacationEmergency, VacationExams}

func ParseVacationType(value string) (VacationType, bool) {
	normalized := VacationType(strings.ToLower(strings.TrimSpace(value)))
	for _, vt := range VacationTypes {
		if normalized == vt {
			return vt, true
		}
	}
	return "", false
}

// ConsumesBalance reports whether approved days of this type are checked
// against the annual balance when the request is filed.
func (v VacationType) ConsumesBalance() bool {
	return v == VacationAnnual
}

type Request struct {
	ID              int64        `json:"id"`
	EmployeeID      string       `json:"employee_id"`
	VacationType    VacationType `json:"vacation_type"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	Duration        int          `json:"duration"`
	Status          Status       `json:"status"`
	Reason          string       `json:"reason,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	ApprovalDate    *time.Time   `json:"approval_date,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

type NewRequest struct {
	VacationType VacationType
	StartDate    time.Time
	EndDate      time.Time
	Reason       string
}

// Approval is a pending request together with the approved absences that
// overlap it inside the reviewer's scope.
type Approval struct {
	Request   Request   `json:"request"`
	Conflicts []Request `json:"conflicts"`
}

type BalanceSummary struct {
	Earned      float64   `json:"earned"`
	Used        float64   `json:"used"`
	Available   float64   `json:"available"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

type Dashboard struct {
	Balance      BalanceSummary `json:"balance"`
	PendingCount int            `json:"pending_count"`
	TeamSize     int            `json:"team_size"`
	OnLeave      bool           `json:"on_leave"`
	OnLeaveType  VacationType   `json:"on_leave_type,omitempty"`
}

// Form is what a printed vacation request carries: the request, who filed it,
// who signs it off, and the balance at the time of printing.
type Form struct {
	Request  Request
	Employee core.Employee
	Manager  *core.Employee
	Balance  BalanceSummary
}

const (
	AttendancePresent = "Present"
	AttendanceOnLeave = "On Leave"
	AttendanceUnknown = "Unknown"
)

type Attendance struct {
	EmployeeID   string       `json:"employee_id"`
	NameEN       string       `json:"name_en"`
	NameAR       string       `json:"name_ar"`
	Status       string       `json:"status"`
	VacationType VacationType `json:"vacation_type,omitempty"`
	Until        *time.Time   `json:"until,omitempty"`
}

// AttendanceToday is the viewer's own status plus everyone in their scope.
type AttendanceToday struct {
	Date         time.Time    `json:"date"`
	Me           Attendance   `json:"me"`
	Team         []Attendance `json:"team"`
	OnLeaveCount int          `json:"on_leave_count"`
}

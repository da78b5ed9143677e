package report

import (
	"time"

	"leaveportal/internal/domain/leave"
	"leaveportal/internal/platform/calendar"
)

type Filter string

const (
	FilterYTD      Filter = "ytd"
	FilterLast30   Filter = "last_30"
	FilterLast60   Filter = "last_60"
	FilterLast90   Filter = "last_90"
	FilterFullYear Filter = "full_year"
	FilterCustom   Filter = "custom"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

type Options struct {
	Filter     Filter
	Start      *time.Time
	End        *time.Time
	Format     Format
	Language   string
	DateSystem calendar.System
}

type LeaveDetail struct {
	Type      leave.VacationType `json:"type"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	Duration  int                `json:"duration"`
}

type MemberStats struct {
	EmployeeID   string                     `json:"employee_id"`
	NameEN       string                     `json:"name_en"`
	NameAR       string                     `json:"name_ar"`
	PositionEN   string                     `json:"position_en"`
	PositionAR   string                     `json:"position_ar"`
	DaysTaken    int                        `json:"total_leaves_taken"`
	Balance      float64                    `json:"vacation_balance"`
	OnLeave      bool                       `json:"on_leave"`
	DaysByType   map[leave.VacationType]int `json:"leaves_by_type"`
	LeaveDetails []LeaveDetail              `json:"leaves_details"`
}

type Report struct {
	EmployeeID  string               `json:"employee_id"`
	NameEN      string               `json:"name_en"`
	NameAR      string               `json:"name_ar"`
	PeriodStart time.Time            `json:"period_start"`
	PeriodEnd   time.Time            `json:"period_end"`
	GeneratedOn time.Time            `json:"generated_on"`
	Balance     leave.BalanceSummary `json:"balance"`
	PeriodTaken int                  `json:"period_leaves_taken"`
	PeriodFiled int                  `json:"period_requests_count"`
	Team        []MemberStats        `json:"team"`
	Language    string               `json:"language"`
	DateSystem  calendar.System      `json:"date_system"`
}

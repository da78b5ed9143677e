package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"leaveportal/internal/domain/auth"
)

type Employee struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id,omitempty"`
	FirstNameAR           string     `json:"first_name_ar"`
	LastNameAR            string     `json:"last_name_ar"`
	FirstNameEN           string     `json:"first_name_en"`
	LastNameEN            string     `json:"last_name_en"`
	PositionAR            string     `json:"position_ar"`
	PositionEN            string     `json:"position_en"`
	UnitID                *int       `json:"unit_id"`
	ManagerID             *string    `json:"manager_id"`
	Role                  auth.Role  `json:"role"`
	Email                 string     `json:"email,omitempty"`
	StartDate             *time.Time `json:"start_date,omitempty"`
	MonthlyVacationEarned float64    `json:"monthly_vacation_earned"`
}

// ReportsTo reports whether the employee's direct manager is managerID.
func (e Employee) ReportsTo(managerID string) bool {
	return e.ManagerID != nil && *e.ManagerID == managerID
}

func (e Employee) NameEN() string {
	return e.FirstNameEN + " " + e.LastNameEN
}

func (e Employee) NameAR() string {
	return e.FirstNameAR + " " + e.LastNameAR
}

// Public drops the contact and contract fields, leaving what any colleague
// may see in the directory.
func (e Employee) Public() Employee {
	e.Email = ""
	e.StartDate = nil
	e.MonthlyVacationEarned = 0
	e.UserID = ""
	return e
}

type Unit struct {
	ID     int    `json:"id"`
	NameEN string `json:"name_en"`
	NameAR string `json:"name_ar"`
}

const employeeIDPrefix = "IAU-"

// NextEmployeeID continues the IAU-NNN sequence after the highest number in
// use. IDs outside the sequence are ignored.
func NextEmployeeID(employees []Employee) string {
	highest := 0
	for _, emp := range employees {
		n, err := strconv.Atoi(strings.TrimPrefix(emp.ID, employeeIDPrefix))
		if err != nil || !strings.HasPrefix(emp.ID, employeeIDPrefix) {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", employeeIDPrefix, highest+1)
}

package report

import (
	"sort"
	"time"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
)

// Input is the snapshot a report is computed from.
type Input struct {
	Viewer         auth.UserContext
	Employees      []core.Employee
	Requests       []leave.Request
	From           time.Time
	To             time.Time
	Today          time.Time
	ContractMonths int
}

// Build computes the viewer's own period figures and one row per employee in
// the viewer's scope. Days are counted from approved requests that overlap
// [From, To]; each request counts its full duration.
func Build(in Input) Report {
	today := leave.DateOnly(in.Today)
	out := Report{
		EmployeeID:  in.Viewer.EmployeeID,
		PeriodStart: leave.DateOnly(in.From),
		PeriodEnd:   leave.DateOnly(in.To),
		GeneratedOn: today,
		Team:        []MemberStats{},
	}

	for _, emp := range in.Employees {
		if emp.ID != in.Viewer.EmployeeID {
			continue
		}
		out.NameEN = emp.NameEN()
		out.NameAR = emp.NameAR()
		out.Balance = leave.Balance(emp, in.Requests, today, in.ContractMonths)
		break
	}
	for _, req := range inPeriod(in.Viewer.EmployeeID, in.Requests, in.From, in.To) {
		out.PeriodFiled++
		if req.Status == leave.StatusApproved {
			out.PeriodTaken += req.Duration
		}
	}

	scope := leave.NewScope(in.Viewer, in.Employees)
	for _, emp := range scope.Members(in.Employees) {
		out.Team = append(out.Team, memberStats(emp, in, today))
	}
	return out
}

func memberStats(emp core.Employee, in Input, today time.Time) MemberStats {
	stats := MemberStats{
		EmployeeID:   emp.ID,
		NameEN:       emp.NameEN(),
		NameAR:       emp.NameAR(),
		PositionEN:   emp.PositionEN,
		PositionAR:   emp.PositionAR,
		Balance:      leave.Balance(emp, in.Requests, today, in.ContractMonths).Available,
		DaysByType:   map[leave.VacationType]int{},
		LeaveDetails: []LeaveDetail{},
	}
	for _, req := range inPeriod(emp.ID, in.Requests, in.From, in.To) {
		if req.Status != leave.StatusApproved {
			continue
		}
		stats.DaysTaken += req.Duration
		stats.DaysByType[req.VacationType] += req.Duration
		stats.LeaveDetails = append(stats.LeaveDetails, LeaveDetail{
			Type:      req.VacationType,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Duration:  req.Duration,
		})
	}
	_, stats.OnLeave = leave.OnLeave(emp.ID, in.Requests, today)
	return stats
}

// inPeriod returns employeeID's requests overlapping [from, to], newest first.
func inPeriod(employeeID string, requests []leave.Request, from, to time.Time) []leave.Request {
	out := []leave.Request{}
	for _, req := range requests {
		if req.EmployeeID == employeeID && leave.Overlaps(req.StartDate, req.EndDate, from, to) {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out
}

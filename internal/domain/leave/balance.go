package leave

import (
	"math"
	"time"

	"leaveportal/internal/domain/core"
)

const DefaultContractMonths = 11

// addMonths moves t by n calendar months, clamping the day to the length of
// the target month (Jan 31 + 1 month is Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// ContractPeriod returns the contract window [periodStart, periodEnd) that
// contains today, for contracts of the given length renewed back to back from
// start. Before the first contract begins, the first window is returned.
func ContractPeriod(start, today time.Time, months int) (time.Time, time.Time) {
	if months <= 0 {
		months = DefaultContractMonths
	}
	start, today = DateOnly(start), DateOnly(today)
	if today.Before(start) {
		return start, addMonths(start, months)
	}

	elapsed := (today.Year()-start.Year())*12 + int(today.Month()-start.Month())
	k := elapsed / months
	for {
		periodStart := addMonths(start, k*months)
		periodEnd := addMonths(start, (k+1)*months)
		switch {
		case today.Before(periodStart):
			k--
		case !today.Before(periodEnd):
			k++
		default:
			return periodStart, periodEnd
		}
	}
}

// EarnedInPeriod accrues monthly days from periodStart through today. The
// first month counts in full when the period starts on or before the 15th and
// half otherwise; the current month counts in full after the 15th and half
// otherwise; months in between count in full.
func EarnedInPeriod(periodStart, today time.Time, monthly float64) float64 {
	periodStart, today = DateOnly(periodStart), DateOnly(today)
	if today.Before(periodStart) {
		return 0
	}

	earned := 0.0
	cursor := time.Date(periodStart.Year(), periodStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(today) {
		switch {
		case sameMonth(cursor, periodStart):
			if periodStart.Day() <= 15 {
				earned += monthly
			} else {
				earned += monthly / 2
			}
		case sameMonth(cursor, today):
			if today.Day() > 15 {
				earned += monthly
			} else {
				earned += monthly / 2
			}
		default:
			earned += monthly
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return earned
}

// Balance summarizes the employee's vacation position for the contract period
// containing today. Only approved requests starting inside the period count
// as used; balances from earlier contracts are forfeited.
func Balance(emp core.Employee, requests []Request, today time.Time, months int) BalanceSummary {
	if emp.StartDate == nil || DateOnly(*emp.StartDate).After(DateOnly(today)) {
		return BalanceSummary{}
	}

	periodStart, periodEnd := ContractPeriod(*emp.StartDate, today, months)
	earned := EarnedInPeriod(periodStart, today, emp.MonthlyVacationEarned)

	used := 0.0
	for _, req := range requests {
		if req.EmployeeID != emp.ID || req.Status != StatusApproved {
			continue
		}
		if !DateOnly(req.StartDate).Before(periodStart) {
			used += float64(req.Duration)
		}
	}

	return BalanceSummary{
		Earned:      round2(earned),
		Used:        round2(used),
		Available:   round2(math.Max(0, earned-used)),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

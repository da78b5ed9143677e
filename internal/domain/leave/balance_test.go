package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leaveportal/internal/domain/core"
)

func TestContractPeriod(t *testing.T) {
	start := day(2023, 1, 10)

	ps, pe := ContractPeriod(start, day(2023, 6, 1), 11)
	require.Equal(t, day(2023, 1, 10), ps)
	require.Equal(t, day(2023, 12, 10), pe)

	ps, pe = ContractPeriod(start, day(2023, 12, 10), 11)
	require.Equal(t, day(2023, 12, 10), ps)
	require.Equal(t, day(2024, 11, 10), pe)

	ps, _ = ContractPeriod(start, day(2023, 12, 9), 11)
	require.Equal(t, day(2023, 1, 10), ps)
}

func TestContractPeriodBeforeStart(t *testing.T) {
	ps, pe := ContractPeriod(day(2026, 3, 1), day(2026, 1, 1), 11)
	require.Equal(t, day(2026, 3, 1), ps)
	require.Equal(t, day(2027, 2, 1), pe)
}

func TestContractPeriodClampsMonthEnd(t *testing.T) {
	ps, pe := ContractPeriod(day(2023, 3, 31), day(2024, 2, 29), 11)
	require.Equal(t, day(2024, 2, 29), ps)
	require.Equal(t, day(2025, 1, 31), pe)
}

// Every period end is counted from the original start date, so a month-end
// start keeps returning to the 31st instead of drifting to the 30th.
func TestContractPeriodFromMonthEndStart(t *testing.T) {
	start := day(2024, 1, 31)

	ps, pe := ContractPeriod(start, day(2024, 6, 1), 11)
	require.Equal(t, day(2024, 1, 31), ps)
	require.Equal(t, day(2024, 12, 31), pe)

	ps, pe = ContractPeriod(start, day(2025, 1, 15), 11)
	require.Equal(t, day(2024, 12, 31), ps)
	require.Equal(t, day(2025, 11, 30), pe)

	ps, pe = ContractPeriod(start, day(2026, 10, 30), 11)
	require.Equal(t, day(2025, 11, 30), ps)
	require.Equal(t, day(2026, 10, 31), pe)
}

func TestEarnedInPeriod(t *testing.T) {
	// Start on the 10th: full first month. Today on the 20th: full current month.
	require.InDelta(t, 7.5, EarnedInPeriod(day(2025, 1, 10), day(2025, 3, 20), 2.5), 1e-9)
	// Start after the 15th: half first month. Today on the 15th: half current month.
	require.InDelta(t, 5.0, EarnedInPeriod(day(2025, 1, 20), day(2025, 3, 15), 2.5), 1e-9)
	// Same month: only the start-month rule applies.
	require.InDelta(t, 2.5, EarnedInPeriod(day(2025, 4, 1), day(2025, 4, 2), 2.5), 1e-9)
	require.Zero(t, EarnedInPeriod(day(2025, 4, 1), day(2025, 3, 2), 2.5))
}

func TestBalance(t *testing.T) {
	start := day(2025, 1, 10)
	emp := core.Employee{ID: "E1", StartDate: &start, MonthlyVacationEarned: 2.5}
	requests := []Request{
		{EmployeeID: "E1", Status: StatusApproved, StartDate: day(2025, 2, 1), EndDate: day(2025, 2, 3), Duration: 3},
		{EmployeeID: "E1", Status: StatusPending, StartDate: day(2025, 3, 1), EndDate: day(2025, 3, 1), Duration: 1},
		{EmployeeID: "E1", Status: StatusApproved, StartDate: day(2024, 12, 1), EndDate: day(2024, 12, 2), Duration: 2},
		{EmployeeID: "E2", Status: StatusApproved, StartDate: day(2025, 2, 1), EndDate: day(2025, 2, 5), Duration: 5},
	}

	got := Balance(emp, requests, day(2025, 3, 20), 11)
	require.InDelta(t, 7.5, got.Earned, 1e-9)
	require.InDelta(t, 3.0, got.Used, 1e-9)
	require.InDelta(t, 4.5, got.Available, 1e-9)
	require.Equal(t, day(2025, 1, 10), got.PeriodStart)
}

func TestBalanceFloorsAtZero(t *testing.T) {
	start := day(2025, 1, 10)
	emp := core.Employee{ID: "E1", StartDate: &start, MonthlyVacationEarned: 2.5}
	requests := []Request{
		{EmployeeID: "E1", Status: StatusApproved, StartDate: day(2025, 1, 12), EndDate: day(2025, 1, 21), Duration: 10},
	}

	got := Balance(emp, requests, day(2025, 1, 25), 11)
	require.Zero(t, got.Available)
}

func TestBalanceWithoutStartDate(t *testing.T) {
	require.Equal(t, BalanceSummary{}, Balance(core.Employee{ID: "E1"}, nil, time.Now(), 11))

	future := time.Now().AddDate(1, 0, 0)
	require.Equal(t, BalanceSummary{}, Balance(core.Employee{ID: "E1", StartDate: &future}, nil, time.Now(), 11))
}

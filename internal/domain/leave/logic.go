package leave

import "time"

// DateOnly drops the clock part, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateDays returns the inclusive day count between start and end.
func CalculateDays(start, end time.Time) (int, error) {
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least
// one day. Both ends are inclusive.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd, bStart, bEnd = DateOnly(aStart), DateOnly(aEnd), DateOnly(bStart), DateOnly(bEnd)
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// Covers reports whether day falls inside the request's date range.
func (r Request) Covers(day time.Time) bool {
	return Overlaps(r.StartDate, r.EndDate, day, day)
}

// ValidateNewRequest applies the filing rules: a positive day count and, for
// annual leave, enough available balance.
func ValidateNewRequest(vt VacationType, days int, available float64) error {
	if days <= 0 {
		return ErrInvalidRange
	}
	if vt.ConsumesBalance() && float64(days) > available {
		return ErrInsufficientBalance
	}
	return nil
}

package report

import (
	"strings"
	"time"

	"leaveportal/internal/domain/leave"
)

func ParseFilter(value string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(value)))
	switch f {
	case "":
		return FilterLast30, nil
	case FilterYTD, FilterLast30, FilterLast60, FilterLast90, FilterFullYear, FilterCustom:
		return f, nil
	}
	return "", ErrUnknownFilter
}

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", ErrUnknownFormat
}

// DateRange resolves a filter to an inclusive [start, end] window ending
// today. full_year is the contract period holding today, or the calendar year
// so far when contractStart is unknown. custom without both bounds falls back
// to the last 30 days.
func DateRange(filter Filter, start, end, contractStart *time.Time, today time.Time, contractMonths int) (time.Time, time.Time, error) {
	today = leave.DateOnly(today)
	switch filter {
	case FilterYTD:
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), today, nil
	case FilterLast30:
		return today.AddDate(0, 0, -30), today, nil
	case FilterLast60:
		return today.AddDate(0, 0, -60), today, nil
	case FilterLast90:
		return today.AddDate(0, 0, -90), today, nil
	case FilterFullYear:
		if contractStart == nil {
			return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), today, nil
		}
		from, to := leave.ContractPeriod(*contractStart, today, contractMonths)
		return from, to, nil
	case FilterCustom:
		if start == nil || end == nil {
			return today.AddDate(0, 0, -30), today, nil
		}
		from, to := leave.DateOnly(*start), leave.DateOnly(*end)
		if to.Before(from) {
			return time.Time{}, time.Time{}, leave.ErrInvalidRange
		}
		return from, to, nil
	}
	return time.Time{}, time.Time{}, ErrUnknownFilter
}

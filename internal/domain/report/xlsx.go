package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"leaveportal/internal/domain/leave"
)

const (
	summarySheet = "Summary"
	teamSheet    = "Team"
	detailSheet  = "Leaves"
)

// RenderXLSX writes a workbook with a summary sheet, one row per team member
// and one row per approved leave in the period. Arabic reports are laid out
// right to left.
func RenderXLSX(r Report) ([]byte, error) {
	l := labelsFor(r.Language)
	lang := r.Language
	if lang != "ar" {
		lang = "en"
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(teamSheet); err != nil {
		return nil, fmt.Errorf("add team sheet: %w", err)
	}
	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, fmt.Errorf("add detail sheet: %w", err)
	}

	name := r.NameEN
	if lang == "ar" {
		name = r.NameAR
	}
	summary := [][]any{
		{l.Title},
		{l.Employee, name, r.EmployeeID},
		{l.Period, r.date(lang, r.PeriodStart), r.date(lang, r.PeriodEnd)},
		{l.Generated, r.date(lang, r.GeneratedOn)},
		{l.Earned, r.Balance.Earned},
		{l.Used, r.Balance.Used},
		{l.Available, r.Balance.Available},
		{l.Taken, r.PeriodTaken},
		{l.Filed, r.PeriodFiled},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}

	header := []any{l.Name, l.Position, l.Days, l.Balance, l.Status}
	for _, vt := range leave.VacationTypes {
		header = append(header, l.Types[vt])
	}
	team := [][]any{header}
	details := [][]any{{l.Name, l.LeaveType, l.From, l.To, l.Days}}
	for _, m := range r.Team {
		memberName, position := r.names(m)
		row := []any{memberName, position, m.DaysTaken, m.Balance, r.status(l, m)}
		for _, vt := range leave.VacationTypes {
			row = append(row, m.DaysByType[vt])
		}
		team = append(team, row)

		for _, d := range m.LeaveDetails {
			details = append(details, []any{
				memberName,
				l.Types[d.Type],
				r.date(lang, d.StartDate),
				r.date(lang, d.EndDate),
				d.Duration,
			})
		}
	}
	if err := writeRows(f, teamSheet, team); err != nil {
		return nil, err
	}
	if err := writeRows(f, detailSheet, details); err != nil {
		return nil, err
	}

	if lang == "ar" {
		rtl := true
		for _, sheet := range []string{summarySheet, teamSheet, detailSheet} {
			if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
				return nil, fmt.Errorf("set sheet view: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

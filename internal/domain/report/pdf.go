package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"leaveportal/internal/domain/leave"
)

// RenderPDF writes the report as an A4 landscape table. The core PDF fonts
// only cover Latin text, so the PDF is always rendered with English labels
// and names; Arabic output is available through XLSX.
func RenderPDF(r Report) ([]byte, error) {
	l := labelsFor("en")
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(l.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, l.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("%s: %s (%s)", l.Employee, r.NameEN, r.EmployeeID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("%s: %s - %s", l.Period, r.date("en", r.PeriodStart), r.date("en", r.PeriodEnd)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("%s: %s", l.Generated, r.date("en", r.GeneratedOn)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("%s: %.2f   %s: %.2f   %s: %.2f",
		l.Earned, r.Balance.Earned, l.Used, r.Balance.Used, l.Available, r.Balance.Available))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("%s: %d   %s: %d", l.Taken, r.PeriodTaken, l.Filed, r.PeriodFiled))
	pdf.Ln(10)

	if len(r.Team) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, fmt.Sprintf("%s (%d)", l.Team, len(r.Team)))
		pdf.Ln(9)

		headers := []string{l.Name, l.Position, l.Days, l.Balance, l.Status}
		widths := []float64{60, 60, 25, 25, 25}
		for _, vt := range leave.VacationTypes {
			headers = append(headers, l.Types[vt])
			widths = append(widths, 20)
		}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, m := range r.Team {
			row := []string{
				m.NameEN,
				m.PositionEN,
				fmt.Sprintf("%d", m.DaysTaken),
				fmt.Sprintf("%.2f", m.Balance),
				r.status(l, m),
			}
			for _, vt := range leave.VacationTypes {
				row = append(row, fmt.Sprintf("%d", m.DaysByType[vt]))
			}
			for i, v := range row {
				align := "L"
				if i >= 2 {
					align = "C"
				}
				pdf.CellFormat(widths[i], 6, v, "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

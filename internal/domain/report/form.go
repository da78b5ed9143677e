package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"leaveportal/internal/domain/leave"
	"leaveportal/internal/platform/calendar"
)

// formDate prints a date in both calendars, the way the paper form is filled.
func formDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02"), calendar.Format(*t, calendar.Hijri, "en"))
}

// FormFilename is the download name of a request's vacation form.
func FormFilename(requestID int64) string {
	return fmt.Sprintf("vacation_request_%d.pdf", requestID)
}

// RenderLeaveForm prints one vacation request as an A4 portrait form with the
// employee, the approving manager and the decision. Like RenderPDF it uses
// English names only.
func RenderLeaveForm(f leave.Form) ([]byte, error) {
	l := labelsFor("en")
	req := f.Request

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Vacation Request", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Vacation Request #%d", req.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 8, title, "1", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	row := func(label, value string) {
		pdf.CellFormat(60, 8, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, value, "1", 1, "L", false, 0, "")
	}

	section(l.Employee)
	row("Name", f.Employee.NameEN())
	row("Employee ID", f.Employee.ID)
	row(l.Position, f.Employee.PositionEN)
	pdf.Ln(4)

	section("Request")
	row(l.LeaveType, l.Types[req.VacationType])
	row(l.From, formDate(&req.StartDate))
	row(l.To, formDate(&req.EndDate))
	row("Duration", fmt.Sprintf("%d day(s)", req.Duration))
	row("Current balance", fmt.Sprintf("%.2f", f.Balance.Available))
	usesBalance := 0
	if req.VacationType.ConsumesBalance() {
		usesBalance = req.Duration
	}
	row("Days from balance", fmt.Sprintf("%d", usesBalance))
	if req.Reason != "" {
		row("Reason", req.Reason)
	}
	pdf.Ln(4)

	section("Decision")
	managerName, managerPosition := "-", "-"
	if f.Manager != nil {
		managerName, managerPosition = f.Manager.NameEN(), f.Manager.PositionEN
	}
	row("Direct manager", managerName)
	row(l.Position, managerPosition)
	row(l.Status, string(req.Status))
	approved := "[ ]"
	if req.Status == leave.StatusApproved {
		approved = "[x]"
	}
	row("Approved", approved)
	row("Approval date", formDate(req.ApprovalDate))
	if req.Status == leave.StatusRejected {
		row("Refusal reason", req.RejectionReason)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render leave form: %w", err)
	}
	return buf.Bytes(), nil
}

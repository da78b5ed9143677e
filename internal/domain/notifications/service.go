package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
)

const dateLayout = "2006-01-02"

type Service struct {
	Store          StoreAPI
	Roster         leave.RosterAPI
	Requests       leave.StoreAPI
	Mailer         Mailer
	From           string
	ContractMonths int
	Now            func() time.Time
}

func New(store StoreAPI, roster leave.RosterAPI, requests leave.StoreAPI, mailer Mailer, from string, contractMonths int) *Service {
	return &Service{
		Store:          store,
		Roster:         roster,
		Requests:       requests,
		Mailer:         mailer,
		From:           from,
		ContractMonths: contractMonths,
		Now:            time.Now,
	}
}

func (s *Service) today() time.Time {
	if s.Now == nil {
		return leave.DateOnly(time.Now())
	}
	return leave.DateOnly(s.Now())
}

// notify stores an inbox entry for recipient and emails it when the
// recipient has an address. It reports false when dedupeKey was already
// used. Mail failures are logged, never returned.
func (s *Service) notify(ctx context.Context, recipient core.Employee, kind, dedupeKey string, data templateData) (bool, error) {
	subject, body, err := render(kind, data)
	if err != nil {
		return false, err
	}
	created, err := s.Store.Create(ctx, Notification{
		EmployeeID: recipient.ID,
		Type:       kind,
		Title:      subject,
		Body:       body,
		DedupeKey:  dedupeKey,
	})
	if err != nil || !created {
		return false, err
	}

	if s.Mailer == nil || recipient.Email == "" {
		return true, nil
	}
	if err := s.Mailer.Send(ctx, Message{From: s.From, To: recipient.Email, Subject: subject, Body: body}); err != nil {
		slog.Warn("notification email send failed", "type", kind, "employeeId", recipient.ID, "err", err)
	}
	return true, nil
}

func requestData(emp core.Employee, req leave.Request) templateData {
	return templateData{
		EmployeeID:     emp.ID,
		EmployeeNameEN: emp.NameEN(),
		EmployeeNameAR: emp.NameAR(),
		VacationType:   string(req.VacationType),
		Start:          req.StartDate.Format(dateLayout),
		End:            req.EndDate.Format(dateLayout),
		Duration:       req.Duration,
		Reason:         req.RejectionReason,
	}
}

// LeaveSubmitted tells the requester's direct manager about a new request.
// Top-level employees and dangling manager links notify nobody.
func (s *Service) LeaveSubmitted(ctx context.Context, req leave.Request) error {
	emp, err := s.Roster.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return fmt.Errorf("load requester: %w", err)
	}
	if emp.ManagerID == nil || *emp.ManagerID == emp.ID {
		return nil
	}
	manager, err := s.Roster.GetEmployee(ctx, *emp.ManagerID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load manager: %w", err)
	}

	data := requestData(emp, req)
	data.ManagerNameEN = manager.NameEN()
	data.ManagerNameAR = manager.NameAR()
	_, err = s.notify(ctx, manager, TypeLeaveSubmitted, fmt.Sprintf("%s:%d", TypeLeaveSubmitted, req.ID), data)
	return err
}

// LeaveDecided tells the requester their request was approved or rejected.
// Cancellations are not announced.
func (s *Service) LeaveDecided(ctx context.Context, req leave.Request) error {
	var kind string
	switch req.Status {
	case leave.StatusApproved:
		kind = TypeLeaveApproved
	case leave.StatusRejected:
		kind = TypeLeaveRejected
	default:
		return nil
	}

	emp, err := s.Roster.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return fmt.Errorf("load requester: %w", err)
	}
	data := requestData(emp, req)
	if kind == TypeLeaveApproved {
		requests, err := s.Requests.ListRequests(ctx)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}
		data.Remaining = leave.Balance(emp, requests, s.today(), s.ContractMonths).Available
	}
	_, err = s.notify(ctx, emp, kind, fmt.Sprintf("%s:%d", kind, req.ID), data)
	return err
}

// ContractAlerts picks the contract notices due for an employee with
// daysRemaining days left on the contract and the given available balance.
// The reminder is due once the contract is within ReminderWindowDays; the
// critical notice is due when the balance has caught up with the days left.
func ContractAlerts(daysRemaining int, available float64) []string {
	if daysRemaining <= 0 {
		return nil
	}
	var out []string
	if daysRemaining <= ReminderWindowDays {
		out = append(out, TypeContractReminder)
	}
	if math.Abs(available-float64(daysRemaining)) <= 1 && float64(daysRemaining) <= available+1 {
		out = append(out, TypeContractCritical)
	}
	return out
}

// ContractReminders sends the contract notices due today. Each notice goes
// out at most once per employee and contract period.
func (s *Service) ContractReminders(ctx context.Context) (ReminderRun, error) {
	employees, err := s.Roster.ListEmployees(ctx)
	if err != nil {
		return ReminderRun{}, fmt.Errorf("load roster: %w", err)
	}
	requests, err := s.Requests.ListRequests(ctx)
	if err != nil {
		return ReminderRun{}, fmt.Errorf("load requests: %w", err)
	}

	today := s.today()
	var run ReminderRun
	for _, emp := range employees {
		if emp.StartDate == nil || leave.DateOnly(*emp.StartDate).After(today) {
			continue
		}
		run.Checked++

		balance := leave.Balance(emp, requests, today, s.ContractMonths)
		remaining := int(balance.PeriodEnd.Sub(today).Hours() / 24)
		for _, kind := range ContractAlerts(remaining, balance.Available) {
			data := templateData{
				EmployeeID:     emp.ID,
				EmployeeNameEN: emp.NameEN(),
				EmployeeNameAR: emp.NameAR(),
				Remaining:      balance.Available,
				ContractEnd:    balance.PeriodEnd.Format(dateLayout),
				DaysRemaining:  remaining,
			}
			key := fmt.Sprintf("%s:%s:%s", kind, emp.ID, balance.PeriodEnd.Format(dateLayout))
			sent, err := s.notify(ctx, emp, kind, key, data)
			switch {
			case err != nil:
				run.Failures++
				slog.Warn("contract notice failed", "type", kind, "employeeId", emp.ID, "err", err)
			case sent:
				run.Sent++
			default:
				run.Skipped++
			}
		}
	}
	return run, nil
}

func (s *Service) List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	items, err := s.Store.List(ctx, employeeID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Count(ctx, employeeID, unreadOnly)
	if err != nil {
		slog.Warn("notification count failed", "employeeId", employeeID, "err", err)
		total = len(items)
	}
	return items, total, nil
}

func (s *Service) MarkRead(ctx context.Context, employeeID string, notificationID int64) error {
	return s.Store.MarkRead(ctx, employeeID, notificationID)
}

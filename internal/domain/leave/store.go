package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"leaveportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const requestColumns = `
    id, employee_id, vacation_type, start_date, end_date, duration, status,
    COALESCE(reason, ''), COALESCE(rejection_reason, ''), approval_date, created_at`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	var vacationType, status string
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &vacationType, &req.StartDate, &req.EndDate, &req.Duration, &status,
		&req.Reason, &req.RejectionReason, &req.ApprovalDate, &req.CreatedAt,
	); err != nil {
		return Request{}, err
	}
	req.VacationType = VacationType(vacationType)
	req.Status = Status(status)
	return req, nil
}

func (s *Store) ListRequests(ctx context.Context) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests
    ORDER BY created_at DESC, id DESC
  `)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) GetRequest(ctx context.Context, requestID int64) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests
    WHERE id = $1
  `, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("get leave request %d: %w", requestID, err)
	}
	return req, nil
}

func (s *Store) CreateRequest(ctx context.Context, req Request) (Request, error) {
	created, err := scanRequest(s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, vacation_type, start_date, end_date, duration, status, reason)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+requestColumns,
		req.EmployeeID, string(req.VacationType), req.StartDate, req.EndDate, req.Duration, string(StatusPending), req.Reason))
	if err != nil {
		return Request{}, fmt.Errorf("create leave request: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateStatus(ctx context.Context, requestID int64, status Status, rejectionReason string, approvalDate *time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, rejection_reason = NULLIF($2, ''), approval_date = $3, updated_at = now()
    WHERE id = $4 AND status = $5
  `, string(status), rejectionReason, approvalDate, requestID, string(StatusPending))
	if err != nil {
		return fmt.Errorf("update leave request %d: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

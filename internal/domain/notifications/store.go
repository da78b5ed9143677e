package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"leaveportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, n Notification) (bool, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (employee_id, type, title, body, dedupe_key)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (dedupe_key) DO NOTHING
    RETURNING id
  `, n.EmployeeID, n.Type, n.Title, n.Body, nullIfEmpty(n.DedupeKey)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return true, nil
}

func (s *Store) List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, type, title, body, read_at, created_at
    FROM notifications
    WHERE employee_id = $1 AND (NOT $2 OR read_at IS NULL)
    ORDER BY created_at DESC, id DESC
    LIMIT $3 OFFSET $4
  `, employeeID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, employeeID string, unreadOnly bool) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE employee_id = $1 AND (NOT $2 OR read_at IS NULL)
  `, employeeID, unreadOnly).Scan(&total); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, employeeID string, notificationID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE employee_id = $1 AND id = $2
  `, employeeID, notificationID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

package notifications

import "context"

type StoreAPI interface {
	// Create stores n and reports false when its dedupe key was already used.
	Create(ctx context.Context, n Notification) (bool, error)
	List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, employeeID string, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, employeeID string, notificationID int64) error
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

package leave

import (
	"context"
	"time"

	"leaveportal/internal/domain/core"
)

type StoreAPI interface {
	ListRequests(ctx context.Context) ([]Request, error)
	GetRequest(ctx context.Context, requestID int64) (Request, error)
	CreateRequest(ctx context.Context, req Request) (Request, error)
	UpdateStatus(ctx context.Context, requestID int64, status Status, rejectionReason string, approvalDate *time.Time) error
}

type RosterAPI interface {
	ListEmployees(ctx context.Context) ([]core.Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

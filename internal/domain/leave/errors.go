package leave

import "errors"

var (
	ErrInvalidRange        = errors.New("end date before start date")
	ErrInsufficientBalance = errors.New("insufficient vacation balance")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidState        = errors.New("invalid state")
	ErrReasonRequired      = errors.New("rejection reason required")
	ErrNotFound            = errors.New("leave request not found")
	ErrNoEmployee          = errors.New("user has no employee profile")
)

package notifications

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID         int64      `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	DedupeKey  string     `json:"-"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Message is one rendered email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// ReminderRun summarizes one pass of the contract reminder job.
type ReminderRun struct {
	Checked  int `json:"checked"`
	Sent     int `json:"sent"`
	Skipped  int `json:"skipped"`
	Failures int `json:"failures"`
}

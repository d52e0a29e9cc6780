package models

import "time"

// Notification delivery states.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// QueuedNotification is one row of the notification queue. The SLA engine
// enqueues; the notifier workers drain.
type QueuedNotification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Recipient string     `json:"recipient"`
	Severity  Severity   `json:"severity"`
	Message   string     `json:"message"`
	TaskID    int64      `json:"task_id"`
	Status    string     `json:"status"`
	LastError string     `json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

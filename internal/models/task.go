package models

import "time"

// Priority of a maintenance task, lowest to highest.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns a sortable weight for the priority; unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// TaskStatus is the lifecycle state of a maintenance task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusScheduled  TaskStatus = "scheduled"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// ActiveStatuses are the statuses the SLA engine monitors.
var ActiveStatuses = []TaskStatus{StatusPending, StatusScheduled, StatusInProgress}

// IsActive reports whether s is a monitored status.
func (s TaskStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// TaskSnapshot is a read-only view of a maintenance task at fetch time.
// AgeMinutes, IsOverdue and MinutesUntilDeadline are computed server-side
// by the snapshot query so every rule sees the same clock.
type TaskSnapshot struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Priority             Priority   `json:"priority"`
	Status               TaskStatus `json:"status"`
	TechnicianID         *int64     `json:"technician_id,omitempty"`
	TechnicianName       string     `json:"technician_name,omitempty"`
	ClientName           string     `json:"client_name,omitempty"`
	LocationName         string     `json:"location_name,omitempty"`
	EquipmentName        string     `json:"equipment_name,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	SLADeadline          *time.Time `json:"sla_deadline,omitempty"`
	AgeMinutes           int        `json:"age_minutes"`
	IsOverdue            bool       `json:"is_overdue"`
	MinutesUntilDeadline *int       `json:"minutes_until_deadline,omitempty"`
}

// TaskUpdate carries the mutable fields an SLA action may touch. Nil
// pointers leave the column untouched; ClearTechnician nulls technician_id.
type TaskUpdate struct {
	Priority          *Priority
	EscalatedTo       *int64
	EscalatedAt       *time.Time
	PriorityBoostedAt *time.Time
	ClearTechnician   bool
}

package sla

import (
	"context"

	"sla-monitor/internal/models"
)

// Store is the persistence surface the engine depends on. *db.DB satisfies
// it; tests substitute an in-memory double. Every call is independently
// failable; the engine never wraps a cycle in a transaction.
type Store interface {
	FetchActiveTasks(ctx context.Context) ([]models.TaskSnapshot, error)
	InsertViolation(ctx context.Context, v models.Violation) error
	InsertNotification(ctx context.Context, n models.QueuedNotification) error
	InsertActionLog(ctx context.Context, e models.ActionLogEntry) error
	UpdateTask(ctx context.Context, id int64, upd models.TaskUpdate) error
	FindUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// Publisher receives violations as they are detected, for live push to
// connected clients. Optional; a nil publisher is ignored.
type Publisher interface {
	PublishViolation(v models.Violation)
}

// Reassigner is the seam for a real scheduling integration. The default
// implementation only clears the assignment; FindReplacement is where a
// scheduler would pick a new technician.
type Reassigner interface {
	FindReplacement(ctx context.Context, task models.TaskSnapshot, criteria string) (*models.User, error)
}

// NoopReassigner never finds a replacement.
type NoopReassigner struct{}

func (NoopReassigner) FindReplacement(context.Context, models.TaskSnapshot, string) (*models.User, error) {
	return nil, nil
}

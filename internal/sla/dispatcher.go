package sla

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/models"
)

// Dispatcher executes a matched rule's action list against external state.
// Actions run in order, one at a time; a failing action is logged and the
// remaining actions still run.
type Dispatcher struct {
	store      Store
	reassigner Reassigner
	logger     *logging.Logger
	now        func() time.Time
	pick       func(n int) int
}

func NewDispatcher(store Store, reassigner Reassigner, logger *logging.Logger) *Dispatcher {
	if reassigner == nil {
		reassigner = NoopReassigner{}
	}
	return &Dispatcher{
		store:      store,
		reassigner: reassigner,
		logger:     logger,
		now:        time.Now,
		pick:       rand.Intn,
	}
}

// Dispatch runs every action attached to the violation's rule. Errors are
// contained per action; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, v models.Violation, actions []models.Action) {
	for _, action := range actions {
		if err := d.run(ctx, v, action); err != nil {
			d.logger.Errorf("Action %s failed for task %d (rule %s): %v", action.Kind, v.TaskID, v.RuleID, err)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, v models.Violation, action models.Action) error {
	switch action.Kind {
	case models.ActionEscalate:
		return d.escalate(ctx, v, action.Target)
	case models.ActionNotify:
		return d.notify(ctx, v, action.Recipients)
	case models.ActionReassign:
		return d.reassign(ctx, v, action.Criteria)
	case models.ActionPriorityBoost:
		return d.boostPriority(ctx, v, action.NewPriority)
	case models.ActionLog:
		return d.appendLog(ctx, v, action.Message)
	default:
		d.logger.Warnf("Unknown action kind %q for task %d, skipping", action.Kind, v.TaskID)
		return nil
	}
}

// escalate hands the task to an active supervisor (or admin for any other
// target), picked at random among candidates, and force-raises priority.
// A missing candidate is a warning, not a failure.
func (d *Dispatcher) escalate(ctx context.Context, v models.Violation, target string) error {
	role := models.RoleAdmin
	if target == "supervisor" {
		role = models.RoleSupervisor
	}

	candidates, err := d.store.FindUsersByRole(ctx, role)
	if err != nil {
		return fmt.Errorf("escalation lookup failed: %w", err)
	}
	if len(candidates) == 0 {
		d.logger.Warnf("No active %s found, escalation for task %d skipped", role, v.TaskID)
		return nil
	}
	assignee := candidates[d.pick(len(candidates))]

	now := d.now()
	critical := models.PriorityCritical
	err = d.store.UpdateTask(ctx, v.TaskID, models.TaskUpdate{
		Priority:    &critical,
		EscalatedTo: &assignee.ID,
		EscalatedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("escalation update failed: %w", err)
	}
	d.logger.Infof("Task %d escalated to %s (%s)", v.TaskID, assignee.Name, role)
	return nil
}

// notify enqueues one queue row per recipient. One recipient failing does
// not stop the rest.
func (d *Dispatcher) notify(ctx context.Context, v models.Violation, recipients []string) error {
	message := fmt.Sprintf("SLA violation [%s]: task #%d %q matched rule %q",
		v.Severity, v.TaskID, v.Details.Task.Title, v.RuleName)

	var failed int
	for _, recipient := range recipients {
		n := models.QueuedNotification{
			ID:        uuid.New().String(),
			Type:      "sla_violation",
			Recipient: recipient,
			Severity:  v.Severity,
			Message:   message,
			TaskID:    v.TaskID,
			Status:    models.NotificationPending,
			CreatedAt: d.now(),
		}
		if err := d.store.InsertNotification(ctx, n); err != nil {
			failed++
			d.logger.Errorf("Notify %s failed for task %d: %v", recipient, v.TaskID, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d notifications failed to enqueue", failed, len(recipients))
	}
	return nil
}

// reassign clears the current assignment and asks the reassigner seam for
// a replacement. The stock reassigner finds none, leaving the task
// unassigned for manual scheduling.
func (d *Dispatcher) reassign(ctx context.Context, v models.Violation, criteria string) error {
	if err := d.store.UpdateTask(ctx, v.TaskID, models.TaskUpdate{ClearTechnician: true}); err != nil {
		return fmt.Errorf("clearing assignment failed: %w", err)
	}

	replacement, err := d.reassigner.FindReplacement(ctx, v.Details.Task, criteria)
	if err != nil {
		return fmt.Errorf("replacement lookup failed: %w", err)
	}
	if replacement == nil {
		d.logger.Warnf("Task %d unassigned, no replacement found (criteria %q)", v.TaskID, criteria)
		return nil
	}
	d.logger.Infof("Task %d reassigned to %s", v.TaskID, replacement.Name)
	return nil
}

func (d *Dispatcher) boostPriority(ctx context.Context, v models.Violation, newPriority models.Priority) error {
	now := d.now()
	err := d.store.UpdateTask(ctx, v.TaskID, models.TaskUpdate{
		Priority:          &newPriority,
		PriorityBoostedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("priority boost failed: %w", err)
	}
	d.logger.Infof("Task %d priority boosted to %s", v.TaskID, newPriority)
	return nil
}

func (d *Dispatcher) appendLog(ctx context.Context, v models.Violation, message string) error {
	entry := models.ActionLogEntry{
		ID:        uuid.New().String(),
		TaskID:    v.TaskID,
		Type:      "log",
		Message:   message,
		CreatedAt: d.now(),
	}
	if err := d.store.InsertActionLog(ctx, entry); err != nil {
		return fmt.Errorf("action log append failed: %w", err)
	}
	return nil
}

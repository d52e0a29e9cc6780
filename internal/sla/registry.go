package sla

import (
	"errors"
	"sync"

	"sla-monitor/internal/models"
)

var ErrRuleNotFound = errors.New("rule not found")

// Registry holds the SLA rules for the process lifetime. Reads take a
// snapshot copy so a running cycle never observes a mid-flight toggle.
type Registry struct {
	mu    sync.RWMutex
	rules []models.Rule
}

// NewRegistry returns a registry seeded with rules; pass DefaultRules()
// for the stock configuration.
func NewRegistry(rules []models.Rule) *Registry {
	return &Registry{rules: rules}
}

// DefaultRules returns the four stock SLA rules.
func DefaultRules() []models.Rule {
	critical := models.PriorityCritical
	high := models.PriorityHigh
	medium := models.PriorityMedium

	return []models.Rule{
		{
			ID:   "critical_immediate",
			Name: "Critical tasks must start within 30 minutes",
			Conditions: models.RuleConditions{
				Priority:             &critical,
				Statuses:             []models.TaskStatus{models.StatusPending, models.StatusScheduled},
				TimeThresholdMinutes: 30,
			},
			Actions: []models.Action{
				{Kind: models.ActionEscalate, Target: "supervisor"},
				{Kind: models.ActionNotify, Recipients: []string{"supervisor", "admin"}},
				{Kind: models.ActionLog, Message: "Critical task not started within 30 minutes"},
			},
			Enabled: true,
		},
		{
			ID:   "high_priority_4h",
			Name: "High priority tasks must start within 4 hours",
			Conditions: models.RuleConditions{
				Priority:             &high,
				Statuses:             []models.TaskStatus{models.StatusPending, models.StatusScheduled},
				TimeThresholdMinutes: 240,
			},
			Actions: []models.Action{
				{Kind: models.ActionNotify, Recipients: []string{"supervisor"}},
				{Kind: models.ActionLog, Message: "High priority task not started within 4 hours"},
			},
			Enabled: true,
		},
		{
			ID:   "medium_priority_24h",
			Name: "Medium priority tasks must start within 24 hours",
			Conditions: models.RuleConditions{
				Priority:             &medium,
				Statuses:             []models.TaskStatus{models.StatusPending, models.StatusScheduled},
				TimeThresholdMinutes: 1440,
			},
			Actions: []models.Action{
				{Kind: models.ActionPriorityBoost, NewPriority: models.PriorityHigh},
				{Kind: models.ActionLog, Message: "Medium priority task aged past 24 hours, boosted"},
			},
			Enabled: true,
		},
		{
			ID:   "overdue_tasks",
			Name: "Tasks past their SLA deadline",
			Conditions: models.RuleConditions{
				Overdue: true,
				Statuses: []models.TaskStatus{
					models.StatusPending, models.StatusScheduled, models.StatusInProgress,
				},
			},
			Actions: []models.Action{
				{Kind: models.ActionEscalate, Target: "supervisor"},
				{Kind: models.ActionNotify, Recipients: []string{"supervisor", "admin"}},
				{Kind: models.ActionLog, Message: "Task is past its SLA deadline"},
			},
			Enabled: true,
		},
	}
}

// List returns a copy of every rule, enabled or not.
func (r *Registry) List() []models.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Enabled returns a copy of the rules currently enabled.
func (r *Registry) Enabled() []models.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Rule
	for _, rule := range r.rules {
		if rule.Enabled {
			out = append(out, rule)
		}
	}
	return out
}

// Get looks up one rule by id.
func (r *Registry) Get(id string) (models.Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return models.Rule{}, false
}

// SetEnabled toggles one rule without removing it from the registry.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules[i].Enabled = enabled
			return nil
		}
	}
	return ErrRuleNotFound
}

package sla

import (
	"time"

	"github.com/google/uuid"
	"sla-monitor/internal/models"
)

// Matches tests one task against one rule's conditions with AND semantics:
// every condition present on the rule must hold, absent conditions always
// pass. Disabled rules never match.
func Matches(task models.TaskSnapshot, rule models.Rule) bool {
	if !rule.Enabled {
		return false
	}
	c := rule.Conditions

	if c.Priority != nil && task.Priority != *c.Priority {
		return false
	}
	if len(c.Statuses) > 0 {
		member := false
		for _, s := range c.Statuses {
			if task.Status == s {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}
	if c.Overdue && !task.IsOverdue {
		return false
	}
	if c.TimeThresholdMinutes > 0 && task.AgeMinutes < c.TimeThresholdMinutes {
		return false
	}
	if c.MinutesUntilDeadline != nil {
		if task.MinutesUntilDeadline == nil || *task.MinutesUntilDeadline > *c.MinutesUntilDeadline {
			return false
		}
	}
	return true
}

// Classify derives severity from task state alone; the matched rule plays
// no part beyond triggering the call.
func Classify(task models.TaskSnapshot) models.Severity {
	switch {
	case task.IsOverdue:
		return models.SeverityCritical
	case task.Priority == models.PriorityCritical:
		return models.SeverityHigh
	case task.Priority == models.PriorityHigh:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Evaluate tests a task against every rule and returns one violation per
// match. All rules are tried; a match never short-circuits the rest.
func Evaluate(task models.TaskSnapshot, rules []models.Rule) []models.Violation {
	now := time.Now()
	var violations []models.Violation
	for _, rule := range rules {
		if !Matches(task, rule) {
			continue
		}
		violations = append(violations, models.Violation{
			ID:       uuid.New().String(),
			TaskID:   task.ID,
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: Classify(task),
			Details: models.ViolationDetails{
				Task:       task,
				Conditions: rule.Conditions,
				DetectedAt: now,
			},
			CreatedAt: now,
		})
	}
	return violations
}

package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sla-monitor/internal/models"
)

func activeTask(priority models.Priority, status models.TaskStatus, ageMinutes int) models.TaskSnapshot {
	return models.TaskSnapshot{
		ID:         42,
		Title:      "Treadmill belt replacement",
		Priority:   priority,
		Status:     status,
		CreatedAt:  time.Now().Add(-time.Duration(ageMinutes) * time.Minute),
		AgeMinutes: ageMinutes,
	}
}

func TestMatches_AbsentConditionsAlwaysPass(t *testing.T) {
	critical := models.PriorityCritical
	rule := models.Rule{
		ID:         "priority_only",
		Conditions: models.RuleConditions{Priority: &critical},
		Enabled:    true,
	}

	// Age is irrelevant when the rule only constrains priority.
	assert.True(t, Matches(activeTask(models.PriorityCritical, models.StatusPending, 0), rule))
	assert.True(t, Matches(activeTask(models.PriorityCritical, models.StatusInProgress, 99999), rule))
	assert.False(t, Matches(activeTask(models.PriorityHigh, models.StatusPending, 99999), rule))
}

func TestMatches_AndSemantics(t *testing.T) {
	high := models.PriorityHigh
	rule := models.Rule{
		ID: "combo",
		Conditions: models.RuleConditions{
			Priority:             &high,
			Statuses:             []models.TaskStatus{models.StatusPending},
			TimeThresholdMinutes: 60,
		},
		Enabled: true,
	}

	assert.True(t, Matches(activeTask(models.PriorityHigh, models.StatusPending, 60), rule))
	assert.False(t, Matches(activeTask(models.PriorityHigh, models.StatusPending, 59), rule), "below age threshold")
	assert.False(t, Matches(activeTask(models.PriorityHigh, models.StatusScheduled, 60), rule), "status not in set")
	assert.False(t, Matches(activeTask(models.PriorityMedium, models.StatusPending, 60), rule), "wrong priority")
}

func TestMatches_OverdueOnlyCheckedWhenSet(t *testing.T) {
	rule := models.Rule{
		ID:         "any_active",
		Conditions: models.RuleConditions{TimeThresholdMinutes: 10},
		Enabled:    true,
	}

	// Overdue state of the task is ignored unless the rule asks for it.
	overdue := activeTask(models.PriorityLow, models.StatusPending, 20)
	overdue.IsOverdue = true
	notOverdue := activeTask(models.PriorityLow, models.StatusPending, 20)

	assert.True(t, Matches(overdue, rule))
	assert.True(t, Matches(notOverdue, rule))

	rule.Conditions.Overdue = true
	assert.True(t, Matches(overdue, rule))
	assert.False(t, Matches(notOverdue, rule))
}

func TestMatches_MinutesUntilDeadline(t *testing.T) {
	window := 120
	rule := models.Rule{
		ID:         "deadline_window",
		Conditions: models.RuleConditions{MinutesUntilDeadline: &window},
		Enabled:    true,
	}

	task := activeTask(models.PriorityMedium, models.StatusScheduled, 30)
	assert.False(t, Matches(task, rule), "no deadline means no match")

	soon := 90
	task.MinutesUntilDeadline = &soon
	assert.True(t, Matches(task, rule))

	far := 121
	task.MinutesUntilDeadline = &far
	assert.False(t, Matches(task, rule))

	past := -15
	task.MinutesUntilDeadline = &past
	assert.True(t, Matches(task, rule), "past deadlines are within the window")
}

func TestMatches_DisabledRuleNeverMatches(t *testing.T) {
	rule := models.Rule{ID: "off", Enabled: false}
	assert.False(t, Matches(activeTask(models.PriorityCritical, models.StatusPending, 9999), rule))
}

func TestClassify_TaskDerivedOnly(t *testing.T) {
	overdue := activeTask(models.PriorityLow, models.StatusInProgress, 10)
	overdue.IsOverdue = true
	assert.Equal(t, models.SeverityCritical, Classify(overdue))

	assert.Equal(t, models.SeverityHigh, Classify(activeTask(models.PriorityCritical, models.StatusPending, 10)))
	assert.Equal(t, models.SeverityMedium, Classify(activeTask(models.PriorityHigh, models.StatusPending, 10)))
	assert.Equal(t, models.SeverityLow, Classify(activeTask(models.PriorityMedium, models.StatusPending, 10)))
	assert.Equal(t, models.SeverityLow, Classify(activeTask(models.PriorityLow, models.StatusPending, 10)))
}

func TestEvaluate_SameSeverityAcrossRules(t *testing.T) {
	// Two different rules matching the same overdue task yield identical
	// severity: classification never consults the rule.
	task := activeTask(models.PriorityMedium, models.StatusInProgress, 500)
	task.IsOverdue = true

	rules := []models.Rule{
		{ID: "a", Name: "A", Conditions: models.RuleConditions{Overdue: true}, Enabled: true},
		{ID: "b", Name: "B", Conditions: models.RuleConditions{TimeThresholdMinutes: 100}, Enabled: true},
	}

	violations := Evaluate(task, rules)
	require.Len(t, violations, 2)
	assert.Equal(t, violations[0].Severity, violations[1].Severity)
	assert.Equal(t, models.SeverityCritical, violations[0].Severity)
}

func TestEvaluate_NoCrossRuleShortCircuit(t *testing.T) {
	// Satisfies both critical_immediate and overdue_tasks simultaneously.
	task := activeTask(models.PriorityCritical, models.StatusPending, 45)
	task.IsOverdue = true

	violations := Evaluate(task, DefaultRules())
	require.Len(t, violations, 2)

	ids := []string{violations[0].RuleID, violations[1].RuleID}
	assert.Contains(t, ids, "critical_immediate")
	assert.Contains(t, ids, "overdue_tasks")
	assert.NotEqual(t, violations[0].ID, violations[1].ID)
}

func TestEvaluate_CapturesMatchTimeState(t *testing.T) {
	task := activeTask(models.PriorityCritical, models.StatusPending, 45)
	violations := Evaluate(task, DefaultRules())
	require.Len(t, violations, 1)

	v := violations[0]
	assert.Equal(t, task.ID, v.TaskID)
	assert.Equal(t, task, v.Details.Task)
	assert.NotNil(t, v.Details.Conditions.Priority)
	assert.False(t, v.Details.DetectedAt.IsZero())
}

func TestDefaultRules_AgedCriticalTask(t *testing.T) {
	task := activeTask(models.PriorityCritical, models.StatusPending, 45)
	violations := Evaluate(task, DefaultRules())
	require.Len(t, violations, 1)
	assert.Equal(t, "critical_immediate", violations[0].RuleID)
	assert.Equal(t, models.SeverityHigh, violations[0].Severity)
}

func TestDefaultRules_AgedHighPriorityTask(t *testing.T) {
	task := activeTask(models.PriorityHigh, models.StatusScheduled, 300)
	violations := Evaluate(task, DefaultRules())
	require.Len(t, violations, 1)
	assert.Equal(t, "high_priority_4h", violations[0].RuleID)
	assert.Equal(t, models.SeverityMedium, violations[0].Severity)
}

func TestDefaultRules_OverdueLowPriorityTask(t *testing.T) {
	task := activeTask(models.PriorityLow, models.StatusInProgress, 5)
	task.IsOverdue = true
	violations := Evaluate(task, DefaultRules())
	require.Len(t, violations, 1)
	assert.Equal(t, "overdue_tasks", violations[0].RuleID)
	assert.Equal(t, models.SeverityCritical, violations[0].Severity)
}

func TestDefaultRules_FreshLowPriorityTask(t *testing.T) {
	task := activeTask(models.PriorityLow, models.StatusPending, 10)
	violations := Evaluate(task, DefaultRules())
	assert.Empty(t, violations)
}

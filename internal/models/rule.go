package models

// RuleConditions is the predicate of an SLA rule. Zero-value fields are
// absent conditions and always pass; present fields are ANDed together.
type RuleConditions struct {
	// Priority must match exactly when set.
	Priority *Priority `json:"priority,omitempty"`
	// Statuses is a membership set; empty means any status.
	Statuses []TaskStatus `json:"statuses,omitempty"`
	// Overdue, when true, requires task.IsOverdue. False means unchecked.
	Overdue bool `json:"overdue,omitempty"`
	// TimeThresholdMinutes requires age_minutes >= threshold. 0 means unchecked.
	TimeThresholdMinutes int `json:"time_threshold_minutes,omitempty"`
	// MinutesUntilDeadline requires a non-null deadline at most this many
	// minutes away (negative values allowed for past deadlines).
	MinutesUntilDeadline *int `json:"minutes_until_deadline,omitempty"`
}

// ActionKind tags the closed set of automated SLA actions.
type ActionKind string

const (
	ActionEscalate      ActionKind = "escalate"
	ActionNotify        ActionKind = "notify"
	ActionReassign      ActionKind = "reassign"
	ActionPriorityBoost ActionKind = "priority_boost"
	ActionLog           ActionKind = "log"
)

// Action is one automated step attached to a rule. Only the fields of the
// tagged kind are meaningful.
type Action struct {
	Kind        ActionKind `json:"kind"`
	Target      string     `json:"target,omitempty"`       // escalate: role to escalate to
	Recipients  []string   `json:"recipients,omitempty"`   // notify
	Criteria    string     `json:"criteria,omitempty"`     // reassign
	NewPriority Priority   `json:"new_priority,omitempty"` // priority_boost
	Message     string     `json:"message,omitempty"`      // log
}

// Rule is one declarative SLA rule held by the registry.
type Rule struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Conditions RuleConditions `json:"conditions"`
	Actions    []Action       `json:"actions"`
	Enabled    bool           `json:"enabled"`
}

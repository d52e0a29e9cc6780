package models

import "time"

// Severity is the urgency label attached to a violation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ViolationDetails is the audit payload stored alongside a violation: the
// task state and rule conditions as they were at match time.
type ViolationDetails struct {
	Task       TaskSnapshot   `json:"task"`
	Conditions RuleConditions `json:"conditions"`
	DetectedAt time.Time      `json:"detected_at"`
}

// Violation records one (task, rule) match in one monitoring cycle.
// Rows are append-only; the engine never resolves or deletes them.
type Violation struct {
	ID        string           `json:"id"`
	TaskID    int64            `json:"task_id"`
	RuleID    string           `json:"rule_id"`
	RuleName  string           `json:"rule_name"`
	Severity  Severity         `json:"severity"`
	Details   ViolationDetails `json:"details"`
	Resolved  bool             `json:"resolved"`
	CreatedAt time.Time        `json:"created_at"`
}

// ViolationStats is one day of the trailing-window rollup.
type ViolationStats struct {
	Date               time.Time `json:"violation_date"`
	TotalViolations    int       `json:"total_violations"`
	CriticalViolations int       `json:"critical_violations"`
	HighViolations     int       `json:"high_violations"`
	MediumViolations   int       `json:"medium_violations"`
	LowViolations      int       `json:"low_violations"`
}

// ActionLogEntry is one row of the action audit log.
type ActionLogEntry struct {
	ID        string    `json:"id"`
	TaskID    int64     `json:"task_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

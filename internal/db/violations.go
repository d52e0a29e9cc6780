package db

import (
	"context"
	"encoding/json"
	"fmt"

	"sla-monitor/internal/models"
)

// InsertViolation appends one violation row. Rows are never updated or
// deleted by this service; the resolved column belongs to downstream
// reporting.
func (d *DB) InsertViolation(ctx context.Context, v models.Violation) error {
	details, err := json.Marshal(v.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal violation details: %w", err)
	}

	query := `
        INSERT INTO sla_violations (id, task_id, rule_id, rule_name, severity, details, resolved, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, false, $7)`
	_, err = d.Pool.Exec(ctx, query,
		v.ID, v.TaskID, v.RuleID, v.RuleName, v.Severity, details, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert violation: %w", err)
	}
	return nil
}

// GetViolations returns violation history, newest first, with pagination.
func (d *DB) GetViolations(ctx context.Context, limit, offset int) ([]models.Violation, error) {
	query := `
        SELECT id, task_id, rule_id, rule_name, severity, details, resolved, created_at
        FROM sla_violations
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`
	rows, err := d.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get violations: %w", err)
	}
	defer rows.Close()

	var violations []models.Violation
	for rows.Next() {
		var v models.Violation
		var details []byte
		if err := rows.Scan(&v.ID, &v.TaskID, &v.RuleID, &v.RuleName, &v.Severity, &details, &v.Resolved, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		if err := json.Unmarshal(details, &v.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal violation details: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read violations: %w", err)
	}

	return violations, nil
}

// GetViolationStats rolls up violations per day over the trailing window,
// newest day first. Days without violations produce no row.
func (d *DB) GetViolationStats(ctx context.Context, windowDays int) ([]models.ViolationStats, error) {
	query := `
        SELECT created_at::date AS violation_date,
               COUNT(*) AS total_violations,
               COUNT(*) FILTER (WHERE severity = 'critical') AS critical_violations,
               COUNT(*) FILTER (WHERE severity = 'high') AS high_violations,
               COUNT(*) FILTER (WHERE severity = 'medium') AS medium_violations,
               COUNT(*) FILTER (WHERE severity = 'low') AS low_violations
        FROM sla_violations
        WHERE created_at >= now() - ($1 * INTERVAL '1 day')
        GROUP BY created_at::date
        ORDER BY violation_date DESC`
	rows, err := d.Pool.Query(ctx, query, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to get violation stats: %w", err)
	}
	defer rows.Close()

	var stats []models.ViolationStats
	for rows.Next() {
		var s models.ViolationStats
		err := rows.Scan(&s.Date, &s.TotalViolations, &s.CriticalViolations,
			&s.HighViolations, &s.MediumViolations, &s.LowViolations)
		if err != nil {
			return nil, fmt.Errorf("failed to scan violation stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read violation stats: %w", err)
	}

	return stats, nil
}

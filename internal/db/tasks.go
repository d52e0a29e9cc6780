package db

import (
	"context"
	"fmt"
	"strings"

	"sla-monitor/internal/models"
)

// FetchActiveTasks returns all monitorable tasks with their SLA fields
// computed by the database clock, highest priority first, oldest first
// within the same priority.
func (d *DB) FetchActiveTasks(ctx context.Context) ([]models.TaskSnapshot, error) {
	query := `
        SELECT t.id, t.title, t.priority, t.status, t.technician_id,
               COALESCE(u.name, ''), COALESCE(c.name, ''), COALESCE(l.name, ''), COALESCE(e.name, ''),
               t.created_at, t.sla_deadline,
               FLOOR(EXTRACT(EPOCH FROM (now() - t.created_at)) / 60)::int AS age_minutes,
               (t.sla_deadline IS NOT NULL AND t.sla_deadline < now()) AS is_overdue,
               CASE WHEN t.sla_deadline IS NULL THEN NULL
                    ELSE FLOOR(EXTRACT(EPOCH FROM (t.sla_deadline - now())) / 60)::int
               END AS minutes_until_deadline
        FROM maintenance_tasks t
        LEFT JOIN users u ON u.id = t.technician_id
        LEFT JOIN clients c ON c.id = t.client_id
        LEFT JOIN locations l ON l.id = t.location_id
        LEFT JOIN equipment e ON e.id = t.equipment_id
        WHERE t.status IN ('pending', 'scheduled', 'in_progress')
        ORDER BY CASE t.priority
                     WHEN 'critical' THEN 4
                     WHEN 'high' THEN 3
                     WHEN 'medium' THEN 2
                     ELSE 1
                 END DESC,
                 t.created_at ASC`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.TaskSnapshot
	for rows.Next() {
		var t models.TaskSnapshot
		err := rows.Scan(
			&t.ID, &t.Title, &t.Priority, &t.Status, &t.TechnicianID,
			&t.TechnicianName, &t.ClientName, &t.LocationName, &t.EquipmentName,
			&t.CreatedAt, &t.SLADeadline,
			&t.AgeMinutes, &t.IsOverdue, &t.MinutesUntilDeadline,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies the non-nil fields of upd to one task row.
func (d *DB) UpdateTask(ctx context.Context, id int64, upd models.TaskUpdate) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	if upd.Priority != nil {
		sets = append(sets, fmt.Sprintf("priority = $%d", idx))
		args = append(args, *upd.Priority)
		idx++
	}
	if upd.EscalatedTo != nil {
		sets = append(sets, fmt.Sprintf("escalated_to = $%d", idx))
		args = append(args, *upd.EscalatedTo)
		idx++
	}
	if upd.EscalatedAt != nil {
		sets = append(sets, fmt.Sprintf("escalated_at = $%d", idx))
		args = append(args, *upd.EscalatedAt)
		idx++
	}
	if upd.PriorityBoostedAt != nil {
		sets = append(sets, fmt.Sprintf("priority_boosted_at = $%d", idx))
		args = append(args, *upd.PriorityBoostedAt)
		idx++
	}
	if upd.ClearTechnician {
		sets = append(sets, "technician_id = NULL")
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE maintenance_tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, id)

	result, err := d.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no task updated for id %d", id)
	}
	return nil
}

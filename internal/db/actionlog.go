package db

import (
	"context"
	"fmt"

	"sla-monitor/internal/models"
)

// InsertActionLog appends one row to the SLA action audit log.
func (d *DB) InsertActionLog(ctx context.Context, e models.ActionLogEntry) error {
	query := `
        INSERT INTO sla_action_log (id, task_id, type, message, created_at)
        VALUES ($1, $2, $3, $4, $5)`
	_, err := d.Pool.Exec(ctx, query, e.ID, e.TaskID, e.Type, e.Message, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert action log: %w", err)
	}
	return nil
}

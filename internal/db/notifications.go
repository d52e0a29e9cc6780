package db

import (
	"context"
	"fmt"
	"time"

	"sla-monitor/internal/models"
)

// InsertNotification enqueues one notification row for the notifier workers.
func (d *DB) InsertNotification(ctx context.Context, n models.QueuedNotification) error {
	query := `
        INSERT INTO notification_queue (id, type, recipient, severity, message, task_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := d.Pool.Exec(ctx, query,
		n.ID, n.Type, n.Recipient, n.Severity, n.Message, n.TaskID, n.Status, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// FetchPendingNotifications returns up to limit queued rows, oldest first.
func (d *DB) FetchPendingNotifications(ctx context.Context, limit int) ([]models.QueuedNotification, error) {
	query := `
        SELECT id, type, recipient, severity, message, task_id, status, COALESCE(last_error, ''), created_at, sent_at
        FROM notification_queue
        WHERE status = 'pending'
        ORDER BY created_at ASC
        LIMIT $1`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending notifications: %w", err)
	}
	defer rows.Close()

	var list []models.QueuedNotification
	for rows.Next() {
		var n models.QueuedNotification
		err := rows.Scan(&n.ID, &n.Type, &n.Recipient, &n.Severity, &n.Message,
			&n.TaskID, &n.Status, &n.LastError, &n.CreatedAt, &n.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	return list, nil
}

// UpdateNotificationStatus finalizes one queue row after a delivery attempt.
func (d *DB) UpdateNotificationStatus(ctx context.Context, id, status, lastError string) error {
	query := `
        UPDATE notification_queue
        SET status = $1, last_error = $2,
            sent_at = CASE WHEN $1 = 'sent' THEN $3 ELSE sent_at END
        WHERE id = $4`
	result, err := d.Pool.Exec(ctx, query, status, lastError, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no notification updated for id %s", id)
	}
	return nil
}

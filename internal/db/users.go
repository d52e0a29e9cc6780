package db

import (
	"context"
	"fmt"

	"sla-monitor/internal/models"
)

// FindUsersByRole returns all active users holding the given role.
func (d *DB) FindUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	query := `
        SELECT id, name, email, role, active
        FROM users
        WHERE role = $1 AND active = true`
	rows, err := d.Pool.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by role %s: %w", role, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Active); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return users, nil
}

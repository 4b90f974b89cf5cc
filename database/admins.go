package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"emergency-alert-service/models"
)

// GetAdmin loads one admin by id
func (d *Database) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, city, state, active FROM admins WHERE id = ?
	`, id).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.Role, &admin.City, &admin.State, &admin.Active)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("admin %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admin: %w", err)
	}
	return &admin, nil
}

// FindAdmins lists active admins matching the filter, ordered by id so the
// audience for a fixed filter is stable across calls.
func (d *Database) FindAdmins(ctx context.Context, filter models.AdminFilter) ([]models.Admin, error) {
	conditions := []string{"active = 1"}
	var args []interface{}

	if filter.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, filter.Role)
	}
	if len(filter.Roles) > 0 {
		placeholders := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			placeholders[i] = "?"
			args = append(args, role)
		}
		conditions = append(conditions, "role IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.City != "" {
		conditions = append(conditions, "city = ?")
		args = append(args, filter.City)
	}
	if filter.State != "" {
		conditions = append(conditions, "state = ?")
		args = append(args, filter.State)
	}
	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, state := range filter.States {
			placeholders[i] = "?"
			args = append(args, state)
		}
		conditions = append(conditions, "state IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT id, name, email, role, city, state, active FROM admins WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY id`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		var admin models.Admin
		if err := rows.Scan(&admin.ID, &admin.Name, &admin.Email, &admin.Role, &admin.City, &admin.State, &admin.Active); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"emergency-alert-service/jurisdiction"
	"emergency-alert-service/models"
)

const alertColumns = `id, report_id, target_role, target_city, target_state,
	acknowledged_by, active, escalation_level, help_requested, escalation_history,
	created_at, updated_at`

// alertSortColumns whitelists the fields alert listings may be sorted by
var alertSortColumns = map[string]string{
	"created_at":       "created_at",
	"updated_at":       "updated_at",
	"escalation_level": "escalation_level",
	"target_city":      "target_city",
	"target_state":     "target_state",
	"active":           "active",
}

// CreateAlert persists a new alert
func (d *Database) CreateAlert(ctx context.Context, alert *models.Alert) error {
	ackJSON, err := json.Marshal(emptySlice(alert.AcknowledgedBy))
	if err != nil {
		return fmt.Errorf("failed to marshal acknowledgements: %w", err)
	}
	historyJSON, err := json.Marshal(emptyHistory(alert.EscalationHistory))
	if err != nil {
		return fmt.Errorf("failed to marshal escalation history: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO alerts (id, report_id, target_role, target_city, target_state,
			acknowledged_by, active, escalation_level, help_requested, escalation_history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.ReportID, alert.TargetRole, alert.TargetCity, alert.TargetState,
		string(ackJSON), alert.Active, alert.EscalationLevel, alert.HelpRequested, string(historyJSON))
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetAlert loads one alert by id
func (d *Database) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("alert %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}
	return alert, nil
}

// ListAlerts returns one page of alerts matching the jurisdiction filter,
// plus pagination metadata. sortBy must be a stored field; default newest first.
func (d *Database) ListAlerts(ctx context.Context, filter jurisdiction.AlertFilter, page, pageSize int, sortBy, sortDir string) (*models.AlertPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	column, ok := alertSortColumns[sortBy]
	if !ok {
		if sortBy != "" {
			return nil, models.NewValidationError("cannot sort alerts by %q", sortBy)
		}
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		direction = "ASC"
	}

	where, args := alertWhereClause(filter)

	var total int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM alerts%s ORDER BY %s %s LIMIT ? OFFSET ?`,
		alertColumns, where, column, direction)
	rows, err := d.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &models.AlertPage{
		Alerts: alerts,
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1 && total > 0,
		},
	}, nil
}

// MutateAlert applies fn to the alert under a row lock, so a history append
// can never overwrite a concurrent one. fn sees the current stored value.
func (d *Database) MutateAlert(ctx context.Context, id string, fn func(*models.Alert) error) (*models.Alert, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, models.NewConflictError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ? FOR UPDATE`, id)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("alert %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}

	if err := fn(alert); err != nil {
		return nil, err
	}

	ackJSON, err := json.Marshal(emptySlice(alert.AcknowledgedBy))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal acknowledgements: %w", err)
	}
	historyJSON, err := json.Marshal(emptyHistory(alert.EscalationHistory))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal escalation history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE alerts
		SET acknowledged_by = ?, active = ?, escalation_level = ?, help_requested = ?, escalation_history = ?
		WHERE id = ?
	`, string(ackJSON), alert.Active, alert.EscalationLevel, alert.HelpRequested, string(historyJSON), alert.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, models.NewConflictError("failed to commit alert update", err)
	}
	return alert, nil
}

// DeactivateAlertsForReport flips every alert of the report to inactive
func (d *Database) DeactivateAlertsForReport(ctx context.Context, reportID string) error {
	_, err := d.db.ExecContext(ctx, `UPDATE alerts SET active = 0 WHERE report_id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("failed to deactivate alerts for report %s: %w", reportID, err)
	}
	return nil
}

func alertWhereClause(filter jurisdiction.AlertFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.TargetCity != "" {
		conditions = append(conditions, "target_city = ?")
		args = append(args, filter.TargetCity)
	}
	if filter.TargetState != "" {
		conditions = append(conditions, "target_state = ?")
		args = append(args, filter.TargetState)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "active = 1")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var alert models.Alert
	var ackJSON, historyJSON string

	err := row.Scan(
		&alert.ID,
		&alert.ReportID,
		&alert.TargetRole,
		&alert.TargetCity,
		&alert.TargetState,
		&ackJSON,
		&alert.Active,
		&alert.EscalationLevel,
		&alert.HelpRequested,
		&historyJSON,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(ackJSON), &alert.AcknowledgedBy); err != nil {
		return nil, fmt.Errorf("failed to parse acknowledgements: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &alert.EscalationHistory); err != nil {
		return nil, fmt.Errorf("failed to parse escalation history: %w", err)
	}
	return &alert, nil
}

func emptySlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func emptyHistory(entries []models.EscalationEntry) []models.EscalationEntry {
	if entries == nil {
		return []models.EscalationEntry{}
	}
	return entries
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"emergency-alert-service/models"
)

const reportColumns = `id, reporter_id, kind, content, city, state, status, severity,
	scorer_result, assigned_admin, help_details, review, created_at, updated_at`

// CreateReport persists a new report
func (d *Database) CreateReport(ctx context.Context, report *models.Report) error {
	scorerJSON, err := nullableJSON(report.ScorerResult)
	if err != nil {
		return fmt.Errorf("failed to marshal scorer result: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO reports (id, reporter_id, kind, content, city, state, status, severity, scorer_result, assigned_admin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.ReporterID, report.Kind, report.Content, report.City, report.State,
		report.Status, report.Severity, scorerJSON, report.AssignedAdmin)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReport loads one report by id
func (d *Database) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("report %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return report, nil
}

// GetReportsByReporter lists a reporter's own reports, newest first
func (d *Database) GetReportsByReporter(ctx context.Context, reporterID string) ([]models.Report, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+reportColumns+` FROM reports WHERE reporter_id = ? ORDER BY created_at DESC
	`, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

// UpdateReportScore stamps the severity and scorer result after scoring
func (d *Database) UpdateReportScore(ctx context.Context, id string, severity int, result *models.ScorerResult) error {
	scorerJSON, err := nullableJSON(result)
	if err != nil {
		return fmt.Errorf("failed to marshal scorer result: %w", err)
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE reports SET severity = ?, scorer_result = ? WHERE id = ?
	`, severity, scorerJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update report score: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("report %s not found", id)
	}
	return nil
}

// MutateReport applies fn to the report under a row lock so concurrent
// transitions cannot silently overwrite each other. fn sees the current
// stored value; the mutated report is written back in the same transaction.
func (d *Database) MutateReport(ctx context.Context, id string, fn func(*models.Report) error) (*models.Report, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, models.NewConflictError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ? FOR UPDATE`, id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("report %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	if err := fn(report); err != nil {
		return nil, err
	}

	scorerJSON, err := nullableJSON(report.ScorerResult)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scorer result: %w", err)
	}
	helpJSON, err := nullableJSON(report.HelpDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal help details: %w", err)
	}
	reviewJSON, err := nullableJSON(report.Review)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal review: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE reports
		SET status = ?, severity = ?, scorer_result = ?, assigned_admin = ?, help_details = ?, review = ?
		WHERE id = ?
	`, report.Status, report.Severity, scorerJSON, report.AssignedAdmin, helpJSON, reviewJSON, report.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, models.NewConflictError("failed to commit report update", err)
	}
	return report, nil
}

// DeleteReport removes a report; its alerts cascade
func (d *Database) DeleteReport(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.NewNotFoundError("report %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	var scorerJSON, helpJSON, reviewJSON sql.NullString

	err := row.Scan(
		&report.ID,
		&report.ReporterID,
		&report.Kind,
		&report.Content,
		&report.City,
		&report.State,
		&report.Status,
		&report.Severity,
		&scorerJSON,
		&report.AssignedAdmin,
		&helpJSON,
		&reviewJSON,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalNullable(scorerJSON, &report.ScorerResult); err != nil {
		return nil, fmt.Errorf("failed to parse scorer result: %w", err)
	}
	if err := unmarshalNullable(helpJSON, &report.HelpDetails); err != nil {
		return nil, fmt.Errorf("failed to parse help details: %w", err)
	}
	if err := unmarshalNullable(reviewJSON, &report.Review); err != nil {
		return nil, fmt.Errorf("failed to parse review: %w", err)
	}
	return &report, nil
}

// nullableJSON marshals v for a JSON column, mapping nil pointers to SQL NULL
func nullableJSON(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case *models.ScorerResult:
		if val == nil {
			return nil, nil
		}
	case *models.HelpDetails:
		if val == nil {
			return nil, nil
		}
	case *models.Review:
		if val == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalNullable(col sql.NullString, target interface{}) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), target)
}

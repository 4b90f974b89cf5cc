package database

import (
	"context"
	"testing"
	"time"

	"emergency-alert-service/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportRows(report *models.Report, scorer, help, review interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reporter_id", "kind", "content", "city", "state", "status", "severity",
		"scorer_result", "assigned_admin", "help_details", "review", "created_at", "updated_at",
	}).AddRow(
		report.ID, report.ReporterID, report.Kind, report.Content, report.City, report.State,
		report.Status, report.Severity, scorer, report.AssignedAdmin, help, review,
		time.Now(), time.Now(),
	)
}

func TestCreateReport(t *testing.T) {
	d, mock := newMockDB(t)

	report := &models.Report{
		ID:         "r-1",
		ReporterID: "reporter-1",
		Kind:       models.ReportKindText,
		Content:    "fire near the market",
		City:       "Mumbai",
		State:      "Maharashtra",
		Status:     models.StatusPending,
	}

	mock.ExpectExec("INSERT INTO reports").
		WithArgs("r-1", "reporter-1", models.ReportKindText, "fire near the market",
			"Mumbai", "Maharashtra", models.StatusPending, 0, nil, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, d.CreateReport(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReport_NotFound(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM reports WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.GetReport(context.Background(), "missing")
	assert.True(t, models.IsKind(err, models.ErrNotFound))
}

func TestGetReport_NullJSONColumns(t *testing.T) {
	d, mock := newMockDB(t)

	stored := &models.Report{
		ID:      "r-1",
		Kind:    models.ReportKindText,
		Content: "x",
		City:    "Mumbai",
		State:   "Maharashtra",
		Status:  models.StatusPending,
	}
	mock.ExpectQuery("SELECT .+ FROM reports WHERE id = ?").
		WithArgs("r-1").
		WillReturnRows(reportRows(stored, nil, nil, nil))

	report, err := d.GetReport(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Nil(t, report.ScorerResult)
	assert.Nil(t, report.HelpDetails)
	assert.Nil(t, report.Review)
}

func TestGetReport_ParsesScorerResult(t *testing.T) {
	d, mock := newMockDB(t)

	stored := &models.Report{
		ID:       "r-1",
		Kind:     models.ReportKindText,
		Content:  "x",
		City:     "Mumbai",
		State:    "Maharashtra",
		Status:   models.StatusPending,
		Severity: 85,
	}
	mock.ExpectQuery("SELECT .+ FROM reports WHERE id = ?").
		WithArgs("r-1").
		WillReturnRows(reportRows(stored, `{"severity":85,"tags":["fallback","keyword:fire"],"fallback":true}`, nil, nil))

	report, err := d.GetReport(context.Background(), "r-1")
	require.NoError(t, err)
	require.NotNil(t, report.ScorerResult)
	assert.Equal(t, 85, report.ScorerResult.Severity)
	assert.True(t, report.ScorerResult.Fallback)
}

func TestUpdateReportScore_MissingReport(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("UPDATE reports SET severity = .+ WHERE id = ?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := d.UpdateReportScore(context.Background(), "missing", 65, &models.ScorerResult{Severity: 65})
	assert.True(t, models.IsKind(err, models.ErrNotFound))
}

func TestDeleteReport_MissingReport(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM reports WHERE id = ?").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := d.DeleteReport(context.Background(), "missing")
	assert.True(t, models.IsKind(err, models.ErrNotFound))
}

func TestFindAdmins_AlwaysFiltersInactive(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM admins WHERE active = 1 AND role = \\? AND state = \\? ORDER BY id").
		WithArgs(models.RoleStateAdmin, "Maharashtra").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "city", "state", "active"}).
			AddRow("mh-state-1", "MH State", "mh@example.com", "state_admin", "", "Maharashtra", true))

	admins, err := d.FindAdmins(context.Background(), models.AdminFilter{
		Role:  models.RoleStateAdmin,
		State: "Maharashtra",
	})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "mh-state-1", admins[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

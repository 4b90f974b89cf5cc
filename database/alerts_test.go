package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"emergency-alert-service/jurisdiction"
	"emergency-alert-service/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func alertRows(alert *models.Alert, ack, history string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "report_id", "target_role", "target_city", "target_state",
		"acknowledged_by", "active", "escalation_level", "help_requested", "escalation_history",
		"created_at", "updated_at",
	}).AddRow(
		alert.ID, alert.ReportID, alert.TargetRole, alert.TargetCity, alert.TargetState,
		ack, alert.Active, alert.EscalationLevel, alert.HelpRequested, history,
		time.Now(), time.Now(),
	)
}

func TestCreateAlert_MarshalsEmptyCollections(t *testing.T) {
	d, mock := newMockDB(t)

	alert := &models.Alert{
		ID:          "a-1",
		ReportID:    "r-1",
		TargetRole:  models.RoleAdmin,
		TargetCity:  "Mumbai",
		TargetState: "Maharashtra",
		Active:      true,
	}

	mock.ExpectExec("INSERT INTO alerts").
		WithArgs("a-1", "r-1", models.RoleAdmin, "Mumbai", "Maharashtra",
			"[]", true, 0, false, "[]").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := d.CreateAlert(context.Background(), alert)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAlert_NotFound(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM alerts WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.GetAlert(context.Background(), "missing")
	assert.True(t, models.IsKind(err, models.ErrNotFound))
}

func TestGetAlert_ParsesJSONColumns(t *testing.T) {
	d, mock := newMockDB(t)

	stored := &models.Alert{
		ID:              "a-1",
		ReportID:        "r-1",
		TargetRole:      models.RoleAdmin,
		TargetCity:      "Mumbai",
		TargetState:     "Maharashtra",
		Active:          true,
		EscalationLevel: 2,
		HelpRequested:   true,
	}
	history := `[{"level":"state","requested_by":"mumbai-1","requested_at":"2026-08-01T10:00:00Z","target_regions":["Maharashtra"],"reason":"overwhelmed","notified_admins":["mh-state-1"]}]`

	mock.ExpectQuery("SELECT .+ FROM alerts WHERE id = ?").
		WithArgs("a-1").
		WillReturnRows(alertRows(stored, `["mumbai-1"]`, history))

	alert, err := d.GetAlert(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"mumbai-1"}, alert.AcknowledgedBy)
	require.Len(t, alert.EscalationHistory, 1)
	assert.Equal(t, "state", alert.EscalationHistory[0].Level)
	assert.Equal(t, []string{"mh-state-1"}, alert.EscalationHistory[0].NotifiedAdmins)
}

func TestListAlerts_RejectsUnknownSortColumn(t *testing.T) {
	d, _ := newMockDB(t)

	_, err := d.ListAlerts(context.Background(), jurisdiction.AlertFilter{}, 1, 10, "secret_column", "asc")
	assert.True(t, models.IsKind(err, models.ErrValidation))
}

func TestListAlerts_PaginationMetadata(t *testing.T) {
	d, mock := newMockDB(t)

	filter := jurisdiction.AlertFilter{TargetState: "Maharashtra", ActiveOnly: true}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM alerts WHERE target_state = ? AND active = 1")).
		WithArgs("Maharashtra").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	stored := &models.Alert{ID: "a-1", ReportID: "r-1", TargetRole: models.RoleAdmin, TargetState: "Maharashtra", Active: true}
	mock.ExpectQuery("SELECT .+ FROM alerts WHERE target_state = \\? AND active = 1 ORDER BY created_at DESC LIMIT \\? OFFSET \\?").
		WithArgs("Maharashtra", 10, 10).
		WillReturnRows(alertRows(stored, "[]", "[]"))

	page, err := d.ListAlerts(context.Background(), filter, 2, 10, "", "")
	require.NoError(t, err)
	assert.Len(t, page.Alerts, 1)
	assert.Equal(t, 25, page.Pagination.TotalCount)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateAlert_LocksAndWritesBack(t *testing.T) {
	d, mock := newMockDB(t)

	stored := &models.Alert{ID: "a-1", ReportID: "r-1", TargetRole: models.RoleAdmin, Active: true}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM alerts WHERE id = \\? FOR UPDATE").
		WithArgs("a-1").
		WillReturnRows(alertRows(stored, "[]", "[]"))
	mock.ExpectExec("UPDATE alerts").
		WithArgs(`["mumbai-1"]`, true, 0, false, "[]", "a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	alert, err := d.MutateAlert(context.Background(), "a-1", func(a *models.Alert) error {
		a.AcknowledgedBy = append(a.AcknowledgedBy, "mumbai-1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mumbai-1"}, alert.AcknowledgedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateAlert_CallbackErrorRollsBack(t *testing.T) {
	d, mock := newMockDB(t)

	stored := &models.Alert{ID: "a-1", ReportID: "r-1", TargetRole: models.RoleAdmin, Active: true}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM alerts WHERE id = \\? FOR UPDATE").
		WithArgs("a-1").
		WillReturnRows(alertRows(stored, "[]", "[]"))
	mock.ExpectRollback()

	_, err := d.MutateAlert(context.Background(), "a-1", func(a *models.Alert) error {
		return models.NewAuthorizationError("not yours")
	})
	assert.True(t, models.IsKind(err, models.ErrAuthorization))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateAlertsForReport(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("UPDATE alerts SET active = 0 WHERE report_id = ?").
		WithArgs("r-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := d.DeactivateAlertsForReport(context.Background(), "r-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

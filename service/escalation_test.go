package service

import (
	"context"
	"testing"

	"emergency-alert-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscalateToPeerCities(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	updated, err := f.svc.EscalateToPeerCities(context.Background(), f.admin(t, "mumbai-1"), alert.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.EscalationLevelPeerCities, updated.EscalationLevel)
	assert.True(t, updated.HelpRequested)
	require.Len(t, updated.EscalationHistory, 1)

	entry := updated.EscalationHistory[0]
	assert.Equal(t, models.EscalationPeerCities, entry.Level)
	assert.Equal(t, "mumbai-1", entry.RequestedBy)
	assert.Equal(t, "Requesting assistance from neighboring cities", entry.Reason)
	assert.NotContains(t, entry.TargetRegions, "Mumbai")
	assert.Contains(t, entry.TargetRegions, "Pune")
	assert.Contains(t, entry.TargetRegions, "Nashik")
	assert.ElementsMatch(t, []string{"pune-1", "nagpur-1"}, entry.NotifiedAdmins)

	// Derived alerts exist only for the peer cities that have an active
	// city admin, even though the history lists every peer city.
	var derivedCities []string
	for _, a := range f.store.alertsForReport(updated.ReportID) {
		if a.ID == updated.ID {
			continue
		}
		derivedCities = append(derivedCities, a.TargetCity)
		assert.True(t, a.Active)
		assert.True(t, a.HelpRequested)
		assert.Equal(t, models.EscalationLevelPeerCities, a.EscalationLevel)
		assert.Equal(t, models.RoleCityAdmin, a.TargetRole)
	}
	assert.ElementsMatch(t, []string{"Pune", "Nagpur"}, derivedCities)

	assert.Contains(t, f.realtime.rooms(EventHelpRequest), "city_Pune")
}

func TestEscalateToState(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	updated, err := f.svc.EscalateToState(context.Background(), f.admin(t, "mumbai-1"), alert.ID, "overwhelmed")
	require.NoError(t, err)

	assert.Equal(t, models.EscalationLevelState, updated.EscalationLevel)
	require.Len(t, updated.EscalationHistory, 1)
	assert.Equal(t, models.EscalationState, updated.EscalationHistory[0].Level)
	assert.Equal(t, "overwhelmed", updated.EscalationHistory[0].Reason)
	assert.Equal(t, []string{"Maharashtra"}, updated.EscalationHistory[0].TargetRegions)

	assert.Contains(t, f.realtime.rooms(EventHelpRequest), "state_Maharashtra")
}

func TestEscalateToStates(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	updated, err := f.svc.EscalateToStates(context.Background(), f.admin(t, "mh-state-1"), alert.ID, []string{"Gujarat"}, "")
	require.NoError(t, err)

	assert.Equal(t, models.EscalationLevelState, updated.EscalationLevel)
	require.Len(t, updated.EscalationHistory, 1)
	entry := updated.EscalationHistory[0]
	assert.Equal(t, models.EscalationPeerStates, entry.Level)
	assert.Equal(t, "Requesting assistance from other states", entry.Reason)
	assert.Equal(t, []string{"Gujarat"}, entry.TargetRegions)
	assert.Equal(t, []string{"guj-state-1"}, entry.NotifiedAdmins)
}

func TestEscalateToStates_Validation(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)
	admin := f.admin(t, "mh-state-1")

	_, err := f.svc.EscalateToStates(context.Background(), admin, alert.ID, nil, "")
	assert.True(t, models.IsKind(err, models.ErrValidation))

	_, err = f.svc.EscalateToStates(context.Background(), admin, alert.ID, []string{"Atlantis"}, "")
	assert.True(t, models.IsKind(err, models.ErrValidation))

	_, err = f.svc.EscalateToStates(context.Background(), admin, alert.ID, []string{"Maharashtra"}, "")
	assert.True(t, models.IsKind(err, models.ErrValidation))
}

func TestEscalation_NoAdminsInTargetRejected(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	// Karnataka is a real state but has no registered admins.
	_, err := f.svc.EscalateToStates(context.Background(), f.admin(t, "mh-state-1"), alert.ID, []string{"Karnataka"}, "")
	assert.True(t, models.IsKind(err, models.ErrValidation))

	// No derived alerts were created for the failed escalation.
	assert.Len(t, f.store.alertsForReport(alert.ReportID), 1)
}

func TestEscalateToCentral(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	updated, err := f.svc.EscalateToCentral(context.Background(), f.admin(t, "mh-state-1"), alert.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.EscalationLevelCentral, updated.EscalationLevel)
	require.Len(t, updated.EscalationHistory, 1)
	assert.Equal(t, models.EscalationCentral, updated.EscalationHistory[0].Level)
	assert.Equal(t, []string{"central-1"}, updated.EscalationHistory[0].NotifiedAdmins)

	assert.Contains(t, f.realtime.rooms(EventHelpRequest), "central_admin")
}

func TestEscalation_LevelNeverDecreases(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	_, err := f.svc.EscalateToCentral(context.Background(), f.admin(t, "mumbai-1"), alert.ID, "")
	require.NoError(t, err)

	updated, err := f.svc.EscalateToPeerCities(context.Background(), f.admin(t, "mumbai-1"), alert.ID, "")
	require.NoError(t, err)

	// A lower escalation still records history but keeps the highest level
	assert.Equal(t, models.EscalationLevelCentral, updated.EscalationLevel)
	assert.Len(t, updated.EscalationHistory, 2)
}

func TestEscalation_HistoryAccumulates(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)
	admin := f.admin(t, "mumbai-1")

	_, err := f.svc.EscalateToPeerCities(context.Background(), admin, alert.ID, "")
	require.NoError(t, err)
	_, err = f.svc.EscalateToState(context.Background(), admin, alert.ID, "")
	require.NoError(t, err)
	updated, err := f.svc.EscalateToCentral(context.Background(), admin, alert.ID, "")
	require.NoError(t, err)

	require.Len(t, updated.EscalationHistory, 3)
	assert.Equal(t, models.EscalationPeerCities, updated.EscalationHistory[0].Level)
	assert.Equal(t, models.EscalationState, updated.EscalationHistory[1].Level)
	assert.Equal(t, models.EscalationCentral, updated.EscalationHistory[2].Level)
	assert.Equal(t, models.EscalationLevelCentral, updated.EscalationLevel)
}

func TestEscalation_RoleRestrictions(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	_, err := f.svc.EscalateToPeerCities(context.Background(), f.admin(t, "mh-state-1"), alert.ID, "")
	assert.True(t, models.IsKind(err, models.ErrAuthorization))

	_, err = f.svc.EscalateToState(context.Background(), f.admin(t, "mh-state-1"), alert.ID, "")
	assert.True(t, models.IsKind(err, models.ErrAuthorization))

	_, err = f.svc.EscalateToStates(context.Background(), f.admin(t, "mumbai-1"), alert.ID, []string{"Gujarat"}, "")
	assert.True(t, models.IsKind(err, models.ErrAuthorization))

	_, err = f.svc.EscalateToCentral(context.Background(), f.admin(t, "central-1"), alert.ID, "")
	assert.True(t, models.IsKind(err, models.ErrAuthorization))
}

func TestEscalation_OutsideJurisdictionRejected(t *testing.T) {
	f := newFixture(t)
	_, alert := f.submitWithAlert(t)

	_, err := f.svc.EscalateToPeerCities(context.Background(), f.admin(t, "pune-1"), alert.ID, "")
	assert.True(t, models.IsKind(err, models.ErrAuthorization))
}

func TestEscalation_InactiveAlertRejected(t *testing.T) {
	f := newFixture(t)
	report, alert := f.submitWithAlert(t)

	_, err := f.svc.UpdateReportStatus(context.Background(), f.admin(t, "central-1"), report.ID, StatusUpdateInput{
		Status: models.StatusCompleted,
	})
	require.NoError(t, err)

	_, err = f.svc.EscalateToState(context.Background(), f.admin(t, "mumbai-1"), alert.ID, "")
	assert.True(t, models.IsKind(err, models.ErrValidation))
}

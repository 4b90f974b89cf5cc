package service

import (
	"context"
	"fmt"
	"time"

	"emergency-alert-service/email"
	"emergency-alert-service/jurisdiction"
	"emergency-alert-service/models"
	"emergency-alert-service/rabbitmq"

	"github.com/google/uuid"
)

// Default reasons stamped on escalation history entries when the requester
// does not supply one.
const (
	defaultReasonPeerCities = "Requesting assistance from neighboring cities"
	defaultReasonState      = "Escalating to state level"
	defaultReasonPeerStates = "Requesting assistance from other states"
	defaultReasonCentral    = "Escalating to central/national level"
)

// escalation captures one resolved escalation request before it is applied:
// the derived alerts to create, the history entry and new level for the
// original alert, and the notification fan-out.
type escalation struct {
	kind    string
	level   int
	reason  string
	targets []models.Alert
	regions []string
	filters []models.AdminFilter
	rooms   []string
	// admins, when set, is the pre-resolved audience; applyEscalation
	// resolves it from filters otherwise.
	admins []models.Admin
}

// EscalateToPeerCities asks every other city in the origin state for help.
// City admins only. The original alert moves to at least level 1 and records
// the request in its history.
func (s *Service) EscalateToPeerCities(ctx context.Context, actor *models.Admin, alertID, reason string) (*models.Alert, error) {
	if actor.Role != models.RoleCityAdmin {
		return nil, models.NewAuthorizationError("only city admins can escalate to peer cities")
	}

	alert, report, err := s.loadEscalationTarget(ctx, actor, alertID)
	if err != nil {
		return nil, err
	}

	esc := escalation{
		kind:   models.EscalationPeerCities,
		level:  models.EscalationLevelPeerCities,
		reason: orDefault(reason, defaultReasonPeerCities),
	}
	for _, city := range s.directory.CitiesInState(actor.State) {
		if city == actor.City {
			continue
		}
		esc.regions = append(esc.regions, city)
		esc.filters = append(esc.filters, models.AdminFilter{Role: models.RoleCityAdmin, City: city})
		esc.rooms = append(esc.rooms, jurisdiction.CityRoom(city))
	}
	if len(esc.regions) == 0 {
		return nil, models.NewValidationError("no peer cities available in state %s", actor.State)
	}

	// Derived alerts only target cities where an active city admin was
	// actually found; the history entry still lists every peer city.
	esc.admins = s.collectAudience(ctx, esc.filters)
	if len(esc.admins) == 0 {
		return nil, models.NewValidationError("no active city admins found in peer cities of %s", actor.State)
	}
	seen := make(map[string]bool)
	for _, admin := range esc.admins {
		if seen[admin.City] {
			continue
		}
		seen[admin.City] = true
		esc.targets = append(esc.targets, models.Alert{
			TargetRole:  models.RoleCityAdmin,
			TargetCity:  admin.City,
			TargetState: actor.State,
		})
	}

	return s.applyEscalation(ctx, actor, alert, report, esc)
}

// EscalateToState raises the alert to the origin state's admins. City admins
// only. The original alert moves to at least level 2.
func (s *Service) EscalateToState(ctx context.Context, actor *models.Admin, alertID, reason string) (*models.Alert, error) {
	if actor.Role != models.RoleCityAdmin {
		return nil, models.NewAuthorizationError("only city admins can escalate to state level")
	}

	alert, report, err := s.loadEscalationTarget(ctx, actor, alertID)
	if err != nil {
		return nil, err
	}

	esc := escalation{
		kind:   models.EscalationState,
		level:  models.EscalationLevelState,
		reason: orDefault(reason, defaultReasonState),
		targets: []models.Alert{
			{TargetRole: models.RoleStateAdmin, TargetState: actor.State},
		},
		regions: []string{actor.State},
		filters: []models.AdminFilter{{Role: models.RoleStateAdmin, State: actor.State}},
		rooms:   []string{jurisdiction.StateRoom(actor.State)},
	}

	return s.applyEscalation(ctx, actor, alert, report, esc)
}

// EscalateToStates asks the named states for help. State admins only; every
// state must exist and differ from the requester's own. The original alert
// moves to at least level 2.
func (s *Service) EscalateToStates(ctx context.Context, actor *models.Admin, alertID string, states []string, reason string) (*models.Alert, error) {
	if actor.Role != models.RoleStateAdmin {
		return nil, models.NewAuthorizationError("only state admins can escalate to other states")
	}
	if len(states) == 0 {
		return nil, models.NewValidationError("at least one target state is required")
	}

	alert, report, err := s.loadEscalationTarget(ctx, actor, alertID)
	if err != nil {
		return nil, err
	}

	esc := escalation{
		kind:   models.EscalationPeerStates,
		level:  models.EscalationLevelState,
		reason: orDefault(reason, defaultReasonPeerStates),
	}
	for _, state := range states {
		if !s.directory.ValidateState(state) {
			return nil, models.NewValidationError("unknown state %q", state)
		}
		normalized := s.directory.NormalizeState(state)
		if normalized == actor.State {
			return nil, models.NewValidationError("cannot escalate to your own state")
		}
		esc.targets = append(esc.targets, models.Alert{
			TargetRole:  models.RoleStateAdmin,
			TargetState: normalized,
		})
		esc.regions = append(esc.regions, normalized)
		esc.filters = append(esc.filters, models.AdminFilter{Role: models.RoleStateAdmin, State: normalized})
		esc.rooms = append(esc.rooms, jurisdiction.StateRoom(normalized))
	}

	return s.applyEscalation(ctx, actor, alert, report, esc)
}

// EscalateToCentral raises the alert to the central admins. City and state
// admins may request it. The original alert moves to level 3, the terminal
// escalation level.
func (s *Service) EscalateToCentral(ctx context.Context, actor *models.Admin, alertID, reason string) (*models.Alert, error) {
	if actor.Role != models.RoleCityAdmin && actor.Role != models.RoleStateAdmin {
		return nil, models.NewAuthorizationError("only city and state admins can escalate to central")
	}

	alert, report, err := s.loadEscalationTarget(ctx, actor, alertID)
	if err != nil {
		return nil, err
	}

	esc := escalation{
		kind:   models.EscalationCentral,
		level:  models.EscalationLevelCentral,
		reason: orDefault(reason, defaultReasonCentral),
		targets: []models.Alert{
			{TargetRole: models.RoleCentralAdmin},
		},
		regions: []string{"central"},
		filters: []models.AdminFilter{{Role: models.RoleCentralAdmin}},
		rooms:   []string{jurisdiction.RoomCentral},
	}

	return s.applyEscalation(ctx, actor, alert, report, esc)
}

// loadEscalationTarget fetches the alert and its backing report, rejecting
// escalation of inactive alerts and alerts outside the actor's jurisdiction.
func (s *Service) loadEscalationTarget(ctx context.Context, actor *models.Admin, alertID string) (*models.Alert, *models.Report, error) {
	alert, err := s.store.GetAlert(ctx, alertID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizeAlertAccess(actor, alert); err != nil {
		return nil, nil, err
	}
	if !alert.Active {
		return nil, nil, models.NewValidationError("alert %s is no longer active", alertID)
	}
	report, err := s.store.GetReport(ctx, alert.ReportID)
	if err != nil {
		return nil, nil, err
	}
	return alert, report, nil
}

// applyEscalation creates the derived alerts, appends the history entry to
// the original alert and fans the help request out. Creating derived alerts
// or recording history is part of the operation; notification is best-effort.
func (s *Service) applyEscalation(ctx context.Context, actor *models.Admin, alert *models.Alert, report *models.Report, esc escalation) (*models.Alert, error) {
	admins := esc.admins
	if admins == nil {
		admins = s.collectAudience(ctx, esc.filters)
	}
	if len(admins) == 0 {
		return nil, models.NewValidationError("no active admins found for escalation %s", esc.kind)
	}

	for i := range esc.targets {
		target := esc.targets[i]
		target.ID = uuid.NewString()
		target.ReportID = alert.ReportID
		target.Active = true
		target.EscalationLevel = esc.level
		target.HelpRequested = true
		if err := s.store.CreateAlert(ctx, &target); err != nil {
			return nil, err
		}
	}

	notified := make([]string, 0, len(admins))
	for _, admin := range admins {
		notified = append(notified, admin.ID)
	}

	entry := models.EscalationEntry{
		Level:          esc.kind,
		RequestedBy:    actor.ID,
		RequestedAt:    time.Now().UTC(),
		TargetRegions:  esc.regions,
		Reason:         esc.reason,
		NotifiedAdmins: notified,
	}

	updated, err := s.store.MutateAlert(ctx, alert.ID, func(a *models.Alert) error {
		if esc.level > a.EscalationLevel {
			a.EscalationLevel = esc.level
		}
		a.HelpRequested = true
		a.EscalationHistory = append(a.EscalationHistory, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	info := email.EscalationInfo{
		From:   fmt.Sprintf("%s (%s)", actor.Name, actor.Role),
		Level:  esc.kind,
		Reason: esc.reason,
	}
	subject := fmt.Sprintf("Help Requested: Emergency in %s, %s", report.City, report.State)
	s.mailer.NotifyAdmins(admins, subject, email.HelpRequestHTML(report, info))

	payload := map[string]interface{}{
		"alert_id":     updated.ID,
		"report_id":    report.ID,
		"from":         actor.ID,
		"level":        esc.kind,
		"reason":       esc.reason,
		"danger_level": report.Severity,
		"city":         report.City,
		"state":        report.State,
	}
	for _, room := range esc.rooms {
		s.realtime.Publish(room, EventHelpRequest, payload)
	}

	s.publishEvent(rabbitmq.KeyAlertEscalated, map[string]interface{}{
		"alert_id":  updated.ID,
		"report_id": report.ID,
		"level":     updated.EscalationLevel,
		"kind":      esc.kind,
		"actor_id":  actor.ID,
	})

	return updated, nil
}

func orDefault(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}

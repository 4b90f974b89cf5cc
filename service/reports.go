package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emergency-alert-service/email"
	"emergency-alert-service/jurisdiction"
	"emergency-alert-service/models"
	"emergency-alert-service/rabbitmq"
	"emergency-alert-service/scorer"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// SubmitReportInput is a new incident submission.
type SubmitReportInput struct {
	ReporterID string
	Kind       models.ReportKind
	Content    string
	City       string
	State      string
}

// SubmitReport persists the report, scores it, and raises an alert with full
// notification fan-out when the severity crosses the threshold. Scorer and
// notification failures never fail the submission.
func (s *Service) SubmitReport(ctx context.Context, input SubmitReportInput) (*models.Report, error) {
	if !input.Kind.Valid() {
		return nil, models.NewValidationError("unknown report kind %q", input.Kind)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("report content is required")
	}
	if strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.State) == "" {
		return nil, models.NewValidationError("report city and state are required")
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		ReporterID: input.ReporterID,
		Kind:       input.Kind,
		Content:    input.Content,
		City:       s.directory.NormalizeCity(strings.TrimSpace(input.City), input.State),
		State:      s.directory.NormalizeState(strings.TrimSpace(input.State)),
		Status:     models.StatusPending,
		Severity:   0,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	result := s.scoreReport(ctx, report)
	report.Severity = result.Severity
	report.ScorerResult = result

	if err := s.store.UpdateReportScore(ctx, report.ID, result.Severity, result); err != nil {
		return nil, err
	}

	if report.Severity > SeverityThreshold {
		s.raiseAlert(ctx, report)
	}

	s.publishEvent(rabbitmq.KeyReportCreated, map[string]interface{}{
		"report_id": report.ID,
		"city":      report.City,
		"state":     report.State,
		"severity":  report.Severity,
	})

	return report, nil
}

// scoreReport invokes the ML scorer, falling back deterministically when it
// is unavailable, errors out or exceeds its timeout.
func (s *Service) scoreReport(ctx context.Context, report *models.Report) *models.ScorerResult {
	if s.scorer != nil && s.scorer.Enabled() {
		result, err := s.scorer.Score(ctx, report.Kind, report.Content)
		if err == nil {
			return result
		}
		log.WithError(err).Warnf("Scorer failed for report %s, using fallback", report.ID)
	}
	return scorer.Fallback(report.Kind, report.Content)
}

// raiseAlert creates the level-0 alert for a high-severity report and fans
// the notification out to the city, state and central admins. Failures are
// logged; report submission already succeeded.
func (s *Service) raiseAlert(ctx context.Context, report *models.Report) {
	alert := &models.Alert{
		ID:              uuid.NewString(),
		ReportID:        report.ID,
		TargetRole:      models.RoleAdmin,
		TargetCity:      report.City,
		TargetState:     report.State,
		Active:          true,
		EscalationLevel: models.EscalationLevelInitial,
	}

	if err := s.store.CreateAlert(ctx, alert); err != nil {
		log.WithError(err).Errorf("Failed to create alert for report %s", report.ID)
		return
	}

	audience := s.resolver.NewAlertAudience(report.City, report.State)
	admins := s.collectAudience(ctx, audience.AdminFilters)

	subject := fmt.Sprintf("URGENT: High Danger Emergency in %s, %s", report.City, report.State)
	s.mailer.NotifyAdmins(admins, subject, email.NewAlertHTML(report))

	payload := map[string]interface{}{
		"alert_id":     alert.ID,
		"report_id":    report.ID,
		"danger_level": report.Severity,
		"city":         report.City,
		"state":        report.State,
		"message":      "High Danger Emergency Reported!",
	}
	for _, room := range audience.Rooms {
		s.realtime.Publish(room, EventNewAlert, payload)
	}

	s.publishEvent(rabbitmq.KeyAlertCreated, map[string]interface{}{
		"alert_id":  alert.ID,
		"report_id": report.ID,
		"city":      report.City,
		"state":     report.State,
	})
}

// StatusUpdateInput is a requested report status transition.
type StatusUpdateInput struct {
	Status        models.ReportStatus
	HelpSituation string
}

// UpdateReportStatus drives the report state machine. Completion is
// exclusive to central admins and deactivates every alert of the report.
func (s *Service) UpdateReportStatus(ctx context.Context, actor *models.Admin, reportID string, input StatusUpdateInput) (*models.Report, error) {
	if !actor.Role.IsAdmin() {
		return nil, models.NewAuthorizationError("role %s may not update report status", actor.Role)
	}
	if !input.Status.Valid() {
		return nil, models.NewValidationError("unknown report status %q", input.Status)
	}

	report, err := s.store.MutateReport(ctx, reportID, func(r *models.Report) error {
		if r.Status == models.StatusCompleted {
			return models.NewValidationError("report %s is already completed", reportID)
		}

		switch input.Status {
		case models.StatusInvestigating:
			r.AssignedAdmin = actor.ID
		case models.StatusHelpSent:
			if strings.TrimSpace(input.HelpSituation) == "" {
				return models.NewValidationError("help details situation is required")
			}
			r.HelpDetails = &models.HelpDetails{
				Situation: input.HelpSituation,
				Timestamp: time.Now().UTC(),
			}
		case models.StatusCompleted:
			if actor.Role != models.RoleCentralAdmin {
				return models.NewAuthorizationError("only central admin can mark a report completed")
			}
		}

		r.Status = input.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch input.Status {
	case models.StatusCompleted:
		if err := s.store.DeactivateAlertsForReport(ctx, reportID); err != nil {
			return nil, err
		}
	case models.StatusHelpSent:
		s.notifyReporterHelpSent(ctx, report)
	}

	s.realtime.Publish(jurisdiction.RoomAll, EventPostUpdate, map[string]interface{}{
		"report_id": report.ID,
		"status":    report.Status,
	})
	s.publishEvent(rabbitmq.KeyReportStatus, map[string]interface{}{
		"report_id": report.ID,
		"status":    report.Status,
		"actor_id":  actor.ID,
	})

	return report, nil
}

func (s *Service) notifyReporterHelpSent(ctx context.Context, report *models.Report) {
	if report.Anonymous() || report.HelpDetails == nil {
		return
	}
	reporter, err := s.store.GetAdmin(ctx, report.ReporterID)
	if err != nil {
		log.WithError(err).Warnf("Could not load reporter %s for help notification", report.ReporterID)
		return
	}
	s.mailer.NotifyAddress(reporter.Email, "Help is on the way!", email.HelpOnTheWayHTML(report.HelpDetails.Situation))
}

// AddReview records the reporter's outcome review on a completed report.
func (s *Service) AddReview(ctx context.Context, actorID, reportID string, review models.Review) (*models.Report, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, models.NewValidationError("review rating must be between 1 and 5")
	}

	return s.store.MutateReport(ctx, reportID, func(r *models.Report) error {
		if r.ReporterID == "" || r.ReporterID != actorID {
			return models.NewAuthorizationError("only the original reporter may review this report")
		}
		if r.Status != models.StatusCompleted {
			return models.NewValidationError("can only review completed reports")
		}
		r.Review = &models.Review{Rating: review.Rating, Comment: review.Comment}
		return nil
	})
}

// GetReport loads one report.
func (s *Service) GetReport(ctx context.Context, id string) (*models.Report, error) {
	return s.store.GetReport(ctx, id)
}

// GetMyReports lists the caller's own reports, newest first.
func (s *Service) GetMyReports(ctx context.Context, reporterID string) ([]models.Report, error) {
	return s.store.GetReportsByReporter(ctx, reporterID)
}

// DeleteReport removes a report and, by cascade, all of its alerts.
func (s *Service) DeleteReport(ctx context.Context, actor *models.Admin, id string) error {
	if actor.Role != models.RoleCentralAdmin {
		return models.NewAuthorizationError("only central admin can delete reports")
	}
	return s.store.DeleteReport(ctx, id)
}

// publishEvent emits a lifecycle event to the bus when one is configured.
func (s *Service) publishEvent(routingKey string, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(routingKey, event); err != nil {
		log.WithError(err).Warnf("Failed to publish %s event", routingKey)
	}
}

// collectAudience runs the resolver's admin queries and unions the results,
// keeping the first occurrence of each admin.
func (s *Service) collectAudience(ctx context.Context, filters []models.AdminFilter) []models.Admin {
	seen := make(map[string]bool)
	var admins []models.Admin
	for _, filter := range filters {
		found, err := s.store.FindAdmins(ctx, filter)
		if err != nil {
			log.WithError(err).Warn("Failed to resolve notification audience")
			continue
		}
		for _, admin := range found {
			if !seen[admin.ID] {
				seen[admin.ID] = true
				admins = append(admins, admin)
			}
		}
	}
	return admins
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emergency-alert-service/email"
	"emergency-alert-service/models"

	"github.com/google/uuid"
)

// ListAlertsInput carries the caller's listing controls. Zero values fall
// back to the defaults: page 1, DefaultPageSize, created_at descending.
type ListAlertsInput struct {
	City     string
	State    string
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// ListAlerts returns the page of alerts visible to the actor. The actor's
// jurisdiction always bounds the result; the city and state inputs can only
// narrow it further.
func (s *Service) ListAlerts(ctx context.Context, actor *models.Admin, input ListAlertsInput) (*models.AlertPage, error) {
	filter, err := s.resolver.VisibilityFilter(actor, input.City, input.State)
	if err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	return s.store.ListAlerts(ctx, filter, page, pageSize, input.SortBy, input.SortDir)
}

// GetAlert loads one alert, enforcing the actor's jurisdiction.
func (s *Service) GetAlert(ctx context.Context, actor *models.Admin, id string) (*models.Alert, error) {
	alert, err := s.store.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAlertAccess(actor, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// AcknowledgeAlert records that the actor has seen the alert. Acknowledging
// twice is a no-op, never an error.
func (s *Service) AcknowledgeAlert(ctx context.Context, actor *models.Admin, id string) (*models.Alert, error) {
	if !actor.Role.IsAdmin() {
		return nil, models.NewAuthorizationError("role %s may not acknowledge alerts", actor.Role)
	}

	return s.store.MutateAlert(ctx, id, func(a *models.Alert) error {
		if err := s.authorizeAlertAccess(actor, a); err != nil {
			return err
		}
		if a.Acknowledged(actor.ID) {
			return nil
		}
		a.AcknowledgedBy = append(a.AcknowledgedBy, actor.ID)
		return nil
	})
}

// authorizeAlertAccess checks that the alert falls inside the actor's
// jurisdiction. Central admins see everything; state admins their state;
// city admins their city plus state-wide alerts of their state.
func (s *Service) authorizeAlertAccess(actor *models.Admin, alert *models.Alert) error {
	switch actor.Role {
	case models.RoleCentralAdmin:
		return nil
	case models.RoleStateAdmin:
		if alert.TargetState == actor.State || alert.TargetState == "" {
			return nil
		}
	case models.RoleCityAdmin:
		if alert.TargetCity == actor.City {
			return nil
		}
		if alert.TargetCity == "" && alert.TargetState == actor.State {
			return nil
		}
	}
	return models.NewAuthorizationError("alert %s is outside your jurisdiction", alert.ID)
}

// BroadcastInput is an admin broadcast message.
type BroadcastInput struct {
	Message string
}

// BroadcastResult reports how far a broadcast reached.
type BroadcastResult struct {
	ID         string `json:"id"`
	Recipients int    `json:"recipients"`
}

// Broadcast sends a message to every admin the actor's tier may reach and
// returns the count of emailed recipients. The realtime fan-out mirrors the
// email audience.
func (s *Service) Broadcast(ctx context.Context, actor *models.Admin, input BroadcastInput) (*BroadcastResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, models.NewValidationError("broadcast message is required")
	}

	audience, err := s.resolver.BroadcastAudience(actor)
	if err != nil {
		return nil, err
	}

	admins := s.collectAudience(ctx, audience.AdminFilters)

	from := fmt.Sprintf("%s (%s)", actor.Name, actor.Role)
	subject := fmt.Sprintf("Broadcast from %s", from)
	s.mailer.NotifyAdmins(admins, subject, email.BroadcastHTML(from, string(actor.Role), message))

	broadcastID := uuid.NewString()
	payload := map[string]interface{}{
		"broadcast_id": broadcastID,
		"from":         actor.ID,
		"from_name":    actor.Name,
		"role":         actor.Role,
		"message":      message,
		"sent_at":      time.Now().UTC(),
	}
	for _, room := range audience.Rooms {
		s.realtime.Publish(room, EventBroadcast, payload)
	}

	return &BroadcastResult{ID: broadcastID, Recipients: len(admins)}, nil
}

// PublishNews creates a news item. News and central admins only.
func (s *Service) PublishNews(ctx context.Context, actor *models.Admin, item *models.News) (*models.News, error) {
	if actor.Role != models.RoleNewsAdmin && actor.Role != models.RoleCentralAdmin {
		return nil, models.NewAuthorizationError("role %s may not publish news", actor.Role)
	}
	if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Content) == "" {
		return nil, models.NewValidationError("news title and content are required")
	}
	if item.RelatedReportID != "" {
		if _, err := s.store.GetReport(ctx, item.RelatedReportID); err != nil {
			return nil, err
		}
	}

	item.ID = uuid.NewString()
	item.AuthorID = actor.ID
	item.CreatedAt = time.Now().UTC()
	if err := s.store.CreateNews(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListNews returns all news items, newest first.
func (s *Service) ListNews(ctx context.Context) ([]models.News, error) {
	return s.store.ListNews(ctx)
}

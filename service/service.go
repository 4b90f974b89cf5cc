// Package service holds the report lifecycle and escalation engines. All
// external collaborators (stores, scorer, mail, realtime, event bus) are
// injected interfaces so both engines can be exercised with fakes.
package service

import (
	"context"

	"emergency-alert-service/jurisdiction"
	"emergency-alert-service/models"
)

const (
	// SeverityThreshold is the score above which a report auto-creates an alert.
	SeverityThreshold = 50

	// DefaultPageSize is the alert listing page size when the caller does
	// not specify one.
	DefaultPageSize = 10
)

// Realtime event names published to admin sessions.
const (
	EventNewAlert    = "new_alert"
	EventHelpRequest = "help_request"
	EventPostUpdate  = "post_update"
	EventBroadcast   = "broadcast_msg"
)

// ReportStore persists reports.
type ReportStore interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	GetReportsByReporter(ctx context.Context, reporterID string) ([]models.Report, error)
	UpdateReportScore(ctx context.Context, id string, severity int, result *models.ScorerResult) error
	MutateReport(ctx context.Context, id string, fn func(*models.Report) error) (*models.Report, error)
	DeleteReport(ctx context.Context, id string) error
}

// AlertStore persists alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, filter jurisdiction.AlertFilter, page, pageSize int, sortBy, sortDir string) (*models.AlertPage, error)
	MutateAlert(ctx context.Context, id string, fn func(*models.Alert) error) (*models.Alert, error)
	DeactivateAlertsForReport(ctx context.Context, reportID string) error
}

// AccountStore reads admin and reporter accounts.
type AccountStore interface {
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	FindAdmins(ctx context.Context, filter models.AdminFilter) ([]models.Admin, error)
}

// NewsStore persists news items.
type NewsStore interface {
	CreateNews(ctx context.Context, item *models.News) error
	ListNews(ctx context.Context) ([]models.News, error)
}

// Store is the full persistence surface the engines need.
type Store interface {
	ReportStore
	AlertStore
	AccountStore
	NewsStore
}

// Scorer produces a severity for report content.
type Scorer interface {
	Enabled() bool
	Score(ctx context.Context, kind models.ReportKind, content string) (*models.ScorerResult, error)
}

// Notifier delivers emails, best-effort.
type Notifier interface {
	NotifyAdmins(audience []models.Admin, subject, body string)
	NotifyAddress(address, subject, body string)
}

// RealtimePublisher fans events out to connected admin sessions, best-effort.
type RealtimePublisher interface {
	Publish(room, eventType string, payload interface{})
}

// EventPublisher emits lifecycle events to the message bus, best-effort.
// May be nil when the bus is not configured.
type EventPublisher interface {
	PublishEvent(routingKey string, event interface{}) error
}

// Directory answers region validation queries.
type Directory interface {
	ValidateState(stateName string) bool
	ValidateCity(cityName, stateName string) bool
	CitiesInState(stateName string) []string
	NormalizeState(stateName string) string
	NormalizeCity(cityName, stateName string) string
}

// Service drives the report lifecycle and alert escalation.
type Service struct {
	store     Store
	resolver  *jurisdiction.Resolver
	directory Directory
	scorer    Scorer
	mailer    Notifier
	realtime  RealtimePublisher
	events    EventPublisher
}

// New wires a service instance. events may be nil.
func New(store Store, resolver *jurisdiction.Resolver, directory Directory, sc Scorer, mailer Notifier, realtime RealtimePublisher, events EventPublisher) *Service {
	return &Service{
		store:     store,
		resolver:  resolver,
		directory: directory,
		scorer:    sc,
		mailer:    mailer,
		realtime:  realtime,
		events:    events,
	}
}

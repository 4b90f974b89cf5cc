package models

import (
	"time"
)

// Escalation levels an alert can carry. The level on an original alert is
// the highest level any escalation derived from it has reached.
const (
	EscalationLevelInitial    = 0
	EscalationLevelPeerCities = 1
	EscalationLevelState      = 2
	EscalationLevelCentral    = 3
)

// Escalation history entry kinds.
const (
	EscalationPeerCities = "peer_cities"
	EscalationState      = "state"
	EscalationPeerStates = "peer_states"
	EscalationCentral    = "central"
)

// EscalationEntry is one immutable record in an alert's escalation history.
type EscalationEntry struct {
	Level          string    `json:"level"`
	RequestedBy    string    `json:"requested_by"`
	RequestedAt    time.Time `json:"requested_at"`
	TargetRegions  []string  `json:"target_regions"`
	Reason         string    `json:"reason"`
	NotifiedAdmins []string  `json:"notified_admins"`
}

// Alert is a jurisdiction-scoped notification derived from a report.
// Escalation creates new alerts at the wider scope; the original alert
// accumulates history and tracks the highest level reached.
type Alert struct {
	ID                string            `json:"id"`
	ReportID          string            `json:"report_id"`
	TargetRole        Role              `json:"target_role"`
	TargetCity        string            `json:"target_city,omitempty"`
	TargetState       string            `json:"target_state,omitempty"`
	AcknowledgedBy    []string          `json:"acknowledged_by"`
	Active            bool              `json:"active"`
	EscalationLevel   int               `json:"escalation_level"`
	HelpRequested     bool              `json:"help_requested"`
	EscalationHistory []EscalationEntry `json:"escalation_history"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Acknowledged reports whether the given admin already acknowledged the alert.
func (a *Alert) Acknowledged(adminID string) bool {
	for _, id := range a.AcknowledgedBy {
		if id == adminID {
			return true
		}
	}
	return false
}

// Pagination holds page metadata returned alongside alert listings.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// AlertPage is one page of alerts with its pagination metadata.
type AlertPage struct {
	Alerts     []Alert    `json:"alerts"`
	Pagination Pagination `json:"pagination"`
}

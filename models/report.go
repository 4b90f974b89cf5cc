package models

import (
	"time"
)

// ReportKind determines how the report content is interpreted.
type ReportKind string

const (
	ReportKindText  ReportKind = "text"
	ReportKindImage ReportKind = "image"
	ReportKindAudio ReportKind = "audio"
)

// Valid reports whether k is a known report kind.
func (k ReportKind) Valid() bool {
	switch k {
	case ReportKindText, ReportKindImage, ReportKindAudio:
		return true
	}
	return false
}

// ReportStatus is the lifecycle state of a report.
type ReportStatus string

const (
	StatusPending       ReportStatus = "pending"
	StatusInvestigating ReportStatus = "investigating"
	StatusHelpSent      ReportStatus = "help_sent"
	StatusCompleted     ReportStatus = "completed"
)

// Valid reports whether s is a known report status.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusHelpSent, StatusCompleted:
		return true
	}
	return false
}

// ScorerResult is the structured outcome of the severity scorer,
// stored verbatim on the report.
type ScorerResult struct {
	Severity int      `json:"severity"`
	Tags     []string `json:"tags"`
	Fallback bool     `json:"fallback,omitempty"`
}

// HelpDetails describes the dispatched help, set when a report moves to help_sent.
type HelpDetails struct {
	Situation string    `json:"situation"`
	Timestamp time.Time `json:"timestamp"`
}

// Review is the reporter's outcome review, settable only once the report completed.
type Review struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Report represents a citizen-submitted incident report.
type Report struct {
	ID            string        `json:"id"`
	ReporterID    string        `json:"reporter_id,omitempty"`
	Kind          ReportKind    `json:"kind"`
	Content       string        `json:"content"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	Status        ReportStatus  `json:"status"`
	Severity      int           `json:"severity"`
	ScorerResult  *ScorerResult `json:"scorer_result,omitempty"`
	AssignedAdmin string        `json:"assigned_admin,omitempty"`
	HelpDetails   *HelpDetails  `json:"help_details,omitempty"`
	Review        *Review       `json:"review,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Anonymous reports whether the report was submitted without an identified reporter.
func (r *Report) Anonymous() bool {
	return r.ReporterID == ""
}

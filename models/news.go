package models

import (
	"time"
)

// News is a public news item published by a news admin, optionally tied
// to the report it covers.
type News struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Category        string    `json:"category,omitempty"`
	RelatedReportID string    `json:"related_report_id,omitempty"`
	AuthorID        string    `json:"author_id"`
	CreatedAt       time.Time `json:"created_at"`
}

package scorer

import (
	"strings"

	"emergency-alert-service/models"
)

// Fallback severities applied when the scoring service is unavailable.
const (
	FallbackSeverityUrgent  = 85
	FallbackSeverityDefault = 65
	FallbackSeverityMedia   = 70
)

// urgencyKeywords trigger the high fallback severity for text reports.
var urgencyKeywords = []string{
	"fire",
	"flood",
	"earthquake",
	"collapse",
	"emergency",
	"urgent",
	"help",
	"trapped",
	"explosion",
	"landslide",
	"tsunami",
	"cyclone",
	"accident",
}

// Fallback scores a report without the ML service. Text content is scanned
// for urgency keywords; media reports get a fixed severity and are tagged
// for manual review.
func Fallback(kind models.ReportKind, content string) *models.ScorerResult {
	if kind != models.ReportKindText {
		return &models.ScorerResult{
			Severity: FallbackSeverityMedia,
			Tags:     []string{"fallback", "pending_manual_review"},
			Fallback: true,
		}
	}

	lower := strings.ToLower(content)
	for _, keyword := range urgencyKeywords {
		if strings.Contains(lower, keyword) {
			return &models.ScorerResult{
				Severity: FallbackSeverityUrgent,
				Tags:     []string{"fallback", "keyword:" + keyword},
				Fallback: true,
			}
		}
	}

	return &models.ScorerResult{
		Severity: FallbackSeverityDefault,
		Tags:     []string{"fallback"},
		Fallback: true,
	}
}

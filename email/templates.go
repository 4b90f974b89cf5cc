package email

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"emergency-alert-service/models"
)

// EscalationInfo describes who escalated and why, shown in help request emails
type EscalationInfo struct {
	From   string
	Level  string
	Reason string
}

// NewAlertHTML renders the email body for a freshly created high-severity alert
func NewAlertHTML(report *models.Report) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Emergency Alert</title>
</head>
<body>
    <h2>High Danger Emergency Reported</h2>
    <p><strong>Location:</strong> %s, %s</p>
    <p><strong>Danger Level:</strong> %d</p>
    <p><strong>Report Type:</strong> %s</p>
    %s
    <p><strong>Reported At:</strong> %s</p>
    <p>Please log in to the admin dashboard to acknowledge and act on this alert.</p>
</body>
</html>`,
		html.EscapeString(report.City),
		html.EscapeString(report.State),
		report.Severity,
		html.EscapeString(string(report.Kind)),
		contentSection(report),
		report.CreatedAt.Format(time.RFC1123))
}

// HelpRequestHTML renders the email body for an escalation help request
func HelpRequestHTML(report *models.Report, info EscalationInfo) string {
	levelLine := ""
	if info.Level != "" {
		levelLine = fmt.Sprintf("<p><strong>Escalation Level:</strong> %s</p>", html.EscapeString(info.Level))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Help Request</title>
</head>
<body>
    <h2>Help Requested for an Active Emergency</h2>
    <p><strong>From:</strong> %s</p>
    %s
    <p><strong>Reason:</strong> %s</p>
    <p><strong>Origin Location:</strong> %s, %s</p>
    <p><strong>Danger Level:</strong> %d</p>
    %s
    <p>Please log in to the admin dashboard to coordinate the response.</p>
</body>
</html>`,
		html.EscapeString(info.From),
		levelLine,
		html.EscapeString(info.Reason),
		html.EscapeString(report.City),
		html.EscapeString(report.State),
		report.Severity,
		contentSection(report))
}

// HelpOnTheWayHTML renders the reporter notification for a help_sent transition
func HelpOnTheWayHTML(situation string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Help is on the way</title>
</head>
<body>
    <h2>Help is on the way!</h2>
    <p>Your emergency report has been addressed.</p>
    <p><strong>Help details:</strong> %s</p>
</body>
</html>`, html.EscapeString(situation))
}

// BroadcastHTML renders an admin broadcast message
func BroadcastHTML(from, level, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Broadcast</title>
</head>
<body>
    <h2>Broadcast from %s</h2>
    <p><strong>Level:</strong> %s</p>
    <p>%s</p>
</body>
</html>`,
		html.EscapeString(from),
		html.EscapeString(level),
		html.EscapeString(message))
}

func contentSection(report *models.Report) string {
	if report.Kind != models.ReportKindText {
		return fmt.Sprintf("<p><strong>Attachment:</strong> %s</p>", html.EscapeString(report.Content))
	}
	content := report.Content
	if len(content) > 500 {
		content = content[:500] + "..."
	}
	return fmt.Sprintf("<p><strong>Report:</strong> %s</p>", html.EscapeString(content))
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags produces the plain text alternative from an HTML body
func stripTags(body string) string {
	text := tagPattern.ReplaceAllString(body, " ")
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}

// Package email delivers admin notifications through SendGrid. Delivery is
// best-effort: individual failures are logged and skipped so a dead mailbox
// never blocks an alert or escalation.
package email

import (
	"fmt"

	"emergency-alert-service/config"
	"emergency-alert-service/models"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends alert emails via SendGrid
type Mailer struct {
	config *config.Config
	client *sendgrid.Client
}

// NewMailer creates a new mailer. An empty API key disables sending;
// every call becomes a logged no-op.
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		config: cfg,
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
	}
}

// Enabled reports whether a SendGrid API key is configured
func (m *Mailer) Enabled() bool {
	return m != nil && m.config.SendGridAPIKey != ""
}

// NotifyAdmins sends the subject/body pair to every admin in the audience
func (m *Mailer) NotifyAdmins(audience []models.Admin, subject, body string) {
	if !m.Enabled() {
		log.Debugf("SendGrid disabled, skipping email %q to %d admins", subject, len(audience))
		return
	}

	log.Infof("Sending %q to %d recipients", subject, len(audience))
	for _, admin := range audience {
		if admin.Email == "" {
			continue
		}
		if err := m.sendOne(admin.Email, subject, body); err != nil {
			log.Warnf("Error sending email to %s: %v", admin.Email, err)
			// Continue with other recipients
		}
	}
}

// NotifyAddress sends one email to a bare address (used for reporter updates)
func (m *Mailer) NotifyAddress(address, subject, body string) {
	if !m.Enabled() || address == "" {
		return
	}
	if err := m.sendOne(address, subject, body); err != nil {
		log.Warnf("Error sending email to %s: %v", address, err)
	}
}

func (m *Mailer) sendOne(recipient, subject, body string) error {
	from := mail.NewEmail(m.config.SendGridFromName, m.config.SendGridFromEmail)
	to := mail.NewEmail(recipient, recipient)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", stripTags(body)))
	message.AddContent(mail.NewContent("text/html", body))

	response, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	log.Infof("Email sent to %s! Status: %d", recipient, response.StatusCode)
	return nil
}

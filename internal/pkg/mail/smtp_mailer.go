package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lazos-app/lazos-api/internal/pkg/env"
	"github.com/lazos-app/lazos-api/internal/pkg/jobqueue"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Warnf("[Mail] SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
	} else {
		log.Infof("[Mail] Email sent to %s via %s", to, addr)
	}
	return err
}

// ReportMailer sends moderator notifications for new reports. It satisfies
// the job queue's mailer interface.
type ReportMailer struct {
	Recipient string
}

// NewReportMailerFromEnv builds a mailer from MODERATOR_EMAIL, or returns nil
// when no recipient is configured.
func NewReportMailerFromEnv() *ReportMailer {
	recipient := env.GetEnv("MODERATOR_EMAIL", "")
	if recipient == "" {
		return nil
	}
	return &ReportMailer{Recipient: recipient}
}

// SendReportNotification delivers the new-report email to the moderator
func (m *ReportMailer) SendReportNotification(payload jobqueue.ReportNotificationJobPayload) error {
	subject := fmt.Sprintf("Nuevo reporte: %s (%s)", payload.Reason, payload.TargetType)
	body := fmt.Sprintf(
		"<p>Se recibió un nuevo reporte.</p>"+
			"<ul>"+
			"<li>Reporte: %s</li>"+
			"<li>Objetivo: %s %s</li>"+
			"<li>Motivo: %s</li>"+
			"<li>Detalle: %s</li>"+
			"</ul>",
		payload.ReportUUID, payload.TargetType, payload.TargetUUID,
		payload.Reason, payload.Description,
	)
	return SendMail(m.Recipient, subject, body)
}

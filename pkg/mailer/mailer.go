package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Config holds SMTP settings.
type Config struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// Mailer sends notification emails over SMTP.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a mailer. Enabled() is false when no SMTP host is configured,
// in which case Send logs and drops the message.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Enabled reports whether SMTP delivery is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.SMTPHost != ""
}

// Send delivers one HTML email.
func (m *Mailer) Send(to, subject, bodyHTML string) error {
	if !m.Enabled() {
		m.logger.Info("smtp not configured, dropping email", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromAddress, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", bodyHTML)

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

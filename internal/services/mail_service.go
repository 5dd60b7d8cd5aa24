package services

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"go.uber.org/zap"

	"yamdb/internal/config"
	"yamdb/internal/metrics"
)

//go:embed templates/*.html
var mailTemplates embed.FS

// Mailer delivers a message. Implementations must not block the caller on
// network I/O.
type Mailer interface {
	Send(to, subject, body string)
}

// CodeSender is what the signup flow needs from the mail layer.
type CodeSender interface {
	SendConfirmationCode(email, username, code string)
}

// SMTPMailer sends through the configured SMTP server.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	enabled bool
	log     *zap.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, log *zap.Logger) *SMTPMailer {
	enabled := cfg.Enabled()
	if !enabled {
		log.Warn("SMTPMailer disabled: missing SMTP environment variables")
	}
	return &SMTPMailer{cfg: cfg, enabled: enabled, log: log}
}

// Send delivers in the background. Failures are logged, never retried.
func (m *SMTPMailer) Send(to, subject, body string) {
	if !m.enabled {
		m.log.Info("Email not sent, mail disabled", zap.String("to", to), zap.String("subject", subject))
		metrics.MailsTotal.WithLabelValues("skipped").Inc()
		return
	}

	go func() {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: YaMDb <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", to, m.cfg.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
			m.log.Error("Failed to send email", zap.String("to", to), zap.Error(err))
			metrics.MailsTotal.WithLabelValues("failed").Inc()
			return
		}
		m.log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
		metrics.MailsTotal.WithLabelValues("sent").Inc()
	}()
}

// MailService renders the account emails and hands them to a Mailer.
type MailService struct {
	mailer    Mailer
	log       *zap.Logger
	templates *template.Template
}

func NewMailService(mailer Mailer, log *zap.Logger) *MailService {
	return &MailService{
		mailer:    mailer,
		log:       log,
		templates: template.Must(template.ParseFS(mailTemplates, "templates/*.html")),
	}
}

func (s *MailService) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendConfirmationCode mails code to the user's address.
func (s *MailService) SendConfirmationCode(email, username, code string) {
	body, err := s.render("confirmation.html", map[string]string{
		"Username": username,
		"Code":     code,
	})
	if err != nil {
		s.log.Error("Error rendering confirmation email", zap.Error(err))
		return
	}
	s.mailer.Send(email, "Registration confirmation", body)
}

var (
	_ Mailer     = (*SMTPMailer)(nil)
	_ CodeSender = (*MailService)(nil)
)

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/cargodocs/backend/src/config"
	"github.com/username/cargodocs/backend/src/logger"
	"github.com/username/cargodocs/backend/src/models"
)

func NewEmailService() EmailService {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		return &SMTPEmailService{
			SMTPServer:   config.Cfg.SMTPServer,
			SMTPPort:     config.Cfg.SMTPPort,
			SMTPUser:     config.Cfg.SMTPUser,
			SMTPPassword: config.Cfg.SMTPPassword,
			SenderEmail:  config.Cfg.SenderEmail,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

// summaryBody renders the plain-text notification. Only the first few
// findings are listed; the full report lives in the application.
func summaryBody(batchName string, report *ValidationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation finished for batch %q.\n\n", batchName)
	fmt.Fprintf(&b, "Errors: %d\nWarnings: %d\n\n", report.ErrorCount, report.WarnCount)

	const maxListed = 10
	listed := 0
	for _, msg := range report.Messages {
		if msg.Severity != models.SeverityError {
			continue
		}
		if listed == maxListed {
			fmt.Fprintf(&b, "... and %d more error(s).\n", report.ErrorCount-maxListed)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", msg.RuleID, msg.Message)
		listed++
	}
	b.WriteString("\nPlease review the batch before it can be completed.\n")
	return b.String()
}

type SMTPEmailService struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

func (s *SMTPEmailService) SendValidationSummary(toEmail, batchName string, report *ValidationReport) error {
	from := s.SenderEmail
	to := []string{toEmail}
	subject := fmt.Sprintf("Validation report for batch %q: %d error(s)", batchName, report.ErrorCount)
	body := summaryBody(batchName, report)

	header := make(map[string]string)
	header["From"] = from
	header["To"] = toEmail
	header["Subject"] = subject
	header["MIME-version"] = "1.0"
	header["Content-Type"] = "text/plain; charset=\"UTF-8\""
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body
	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	err := smtp.SendMail(addr, auth, from, to, []byte(message))
	if err != nil {
		logger.L.Error("Failed to send validation summary via SMTP", "error", err, "to", toEmail)
		return fmt.Errorf("failed to send validation summary via SMTP: %w", err)
	}
	logger.L.Info("Validation summary sent successfully via SMTP", "to", toEmail, "batch", batchName)
	return nil
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
}

func (s *MailgunEmailService) SendValidationSummary(toEmail, batchName string, report *ValidationReport) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := fmt.Sprintf("Validation report for batch %q: %d error(s)", batchName, report.ErrorCount)
	recipient := toEmail

	plainTextBody := summaryBody(batchName, report)

	message := s.mg.NewMessage(from, subject, plainTextBody, recipient)
	message.AddTag("validation-report")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send validation summary via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Validation summary sent successfully via Mailgun", "to", toEmail, "id", id, "batch", batchName)
	return nil
}

type MockEmailService struct {
	// SentCount lets tests assert how many sends got through the throttle.
	SentCount int
}

func (m *MockEmailService) SendValidationSummary(toEmail, batchName string, report *ValidationReport) error {
	m.SentCount++
	logger.L.Info("MockEmailService: Would send validation summary.",
		"to", toEmail, "batch", batchName, "errors", report.ErrorCount, "warnings", report.WarnCount)
	return nil
}

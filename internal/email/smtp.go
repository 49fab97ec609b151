package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/caretide/hospital-api/pkg/metrics"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public address used in verification and reset
	// links, e.g. https://portal.caretide.example.
	BaseURL string
}

type smtpService struct {
	cfg     SMTPConfig
	dialer  *gomail.Dialer
	metrics *metrics.Metrics
}

func NewSMTPService(cfg SMTPConfig, m *metrics.Metrics) Service {
	return &smtpService{
		cfg:     cfg,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		metrics: m,
	}
}

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`
<h2>Verify your email</h2>
<p>Click the link below to verify your email address:</p>
<p><a href="{{.BaseURL}}/verify-email?token={{.Token}}">Verify email</a></p>
<p>The link expires in 24 hours. If you did not create an account, ignore this message.</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(`
<h2>Reset your password</h2>
<p>Click the link below to choose a new password:</p>
<p><a href="{{.BaseURL}}/reset-password?token={{.Token}}">Reset password</a></p>
<p>The link expires in 1 hour. If you did not request a reset, ignore this message.</p>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`
<h2>Welcome, {{.Name}}</h2>
<p>Your account is ready. You can now sign in at <a href="{{.BaseURL}}">{{.BaseURL}}</a>.</p>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(`
<h2>Appointment reminder</h2>
<p>Dear {{.PatientName}},</p>
<p>This is a reminder of your appointment with {{.DoctorName}} on {{.When}}.</p>`))

	invoiceTmpl = template.Must(template.New("invoice").Parse(`
<h2>Invoice {{.InvoiceNumber}}</h2>
<p>A new invoice of {{.Amount}} has been issued to you.</p>
<p>You can view and settle it from your patient portal.</p>`))
)

func (s *smtpService) SendVerification(ctx context.Context, email, token string) error {
	return s.sendTemplate(ctx, "verification", email, "Verify your email address", verificationTmpl, map[string]string{
		"BaseURL": s.cfg.BaseURL,
		"Token":   token,
	})
}

func (s *smtpService) SendPasswordReset(ctx context.Context, email, token string) error {
	return s.sendTemplate(ctx, "password_reset", email, "Reset your password", resetTmpl, map[string]string{
		"BaseURL": s.cfg.BaseURL,
		"Token":   token,
	})
}

func (s *smtpService) SendWelcome(ctx context.Context, email, name string) error {
	return s.sendTemplate(ctx, "welcome", email, "Welcome", welcomeTmpl, map[string]string{
		"BaseURL": s.cfg.BaseURL,
		"Name":    name,
	})
}

func (s *smtpService) SendAppointmentReminder(ctx context.Context, email, patientName, doctorName, when string) error {
	return s.sendTemplate(ctx, "appointment_reminder", email, "Appointment reminder", reminderTmpl, map[string]string{
		"PatientName": patientName,
		"DoctorName":  doctorName,
		"When":        when,
	})
}

func (s *smtpService) SendInvoice(ctx context.Context, email, invoiceNumber, amount string) error {
	return s.sendTemplate(ctx, "invoice", email, fmt.Sprintf("Invoice %s", invoiceNumber), invoiceTmpl, map[string]string{
		"InvoiceNumber": invoiceNumber,
		"Amount":        amount,
	})
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.send(ctx, "custom", to, subject, content)
}

func (s *smtpService) sendTemplate(ctx context.Context, name, to, subject string, tmpl *template.Template, data map[string]string) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return s.send(ctx, name, to, subject, body.String())
}

func (s *smtpService) send(ctx context.Context, name, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		if s.metrics != nil {
			s.metrics.EmailsSent.WithLabelValues(name, "error").Inc()
		}
		return fmt.Errorf("failed to send %s email to %s: %w", name, to, err)
	}

	if s.metrics != nil {
		s.metrics.EmailsSent.WithLabelValues(name, "sent").Inc()
	}
	return nil
}

package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/pollwise/pollwise/auth"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppName  string
}

// SMTPMailer delivers account emails over SMTP. Port 465 uses implicit
// TLS, anything else upgrades with STARTTLS when offered.
type SMTPMailer struct {
	config Config
	logger auth.Logger
}

var _ auth.Mailer = (*SMTPMailer)(nil)

type Option func(*SMTPMailer) *SMTPMailer

func NewSMTPMailer(config Config, opts ...Option) *SMTPMailer {
	m := &SMTPMailer{
		config: config,
		logger: auth.DefaultLogger(),
	}

	for _, opt := range opts {
		m = opt(m)
	}

	if m.config.AppName == "" {
		m.config.AppName = "Pollwise"
	}

	return m
}

func WithLogger(logger auth.Logger) Option {
	return func(m *SMTPMailer) *SMTPMailer {
		if logger != nil {
			m.logger = logger
		}
		return m
	}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, otpCode string) error {
	subject := fmt.Sprintf("%s email verification code", m.config.AppName)
	body := fmt.Sprintf(
		"Your verification code is: %s\n\nIt expires in 10 minutes. If you did not create an account, ignore this email.\n",
		otpCode,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, otpCode string) error {
	subject := fmt.Sprintf("%s password reset code", m.config.AppName)
	body := fmt.Sprintf(
		"Your password reset code is: %s\n\nIt expires in 10 minutes. If you did not request a reset, ignore this email.\n",
		otpCode,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) SendWelcomeEmail(ctx context.Context, to, fullName string) error {
	subject := fmt.Sprintf("Welcome to %s", m.config.AppName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour account is ready. Verify your email to unlock voting.\n",
		fullName,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := buildMessage(m.config.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	fromAddr := parseAddress(m.config.From)

	client, err := m.dial(addr)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp connect failed")
	}
	defer client.Close()

	if m.config.Username != "" {
		a := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(a); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "smtp auth failed")
		}
	}

	if err := client.Mail(fromAddr); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp mail failed")
	}

	if err := client.Rcpt(to); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp rcpt failed")
	}

	writer, err := client.Data()
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp data failed")
	}

	if _, err := writer.Write([]byte(message)); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, errors.CategoryOperation, "smtp write failed")
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp close failed")
	}

	m.logger.Debug("mail sent: to=%s subject=%q", to, subject)

	return nil
}

func (m *SMTPMailer) dial(addr string) (*smtp.Client, error) {
	if m.config.Port == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.config.Host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, m.config.Host)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		return nil, err
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}

	return client, nil
}

func buildMessage(from, to, subject, body string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}
	return strings.Join(headers, "\r\n")
}

func parseAddress(from string) string {
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(from[start+1 : end])
	}
	return strings.TrimSpace(from)
}

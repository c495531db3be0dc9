package mailer

import (
	"context"

	"github.com/pollwise/pollwise/auth"
)

// LogMailer writes emails to the logger instead of sending them. Used
// in local development where no SMTP server is configured.
type LogMailer struct {
	Logger auth.Logger
}

var _ auth.Mailer = (*LogMailer)(nil)

func NewLogMailer(logger auth.Logger) *LogMailer {
	if logger == nil {
		logger = auth.DefaultLogger()
	}
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, otpCode string) error {
	m.Logger.Info("verification email: to=%s code=%s", to, otpCode)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, to, otpCode string) error {
	m.Logger.Info("password reset email: to=%s code=%s", to, otpCode)
	return nil
}

func (m *LogMailer) SendWelcomeEmail(ctx context.Context, to, fullName string) error {
	m.Logger.Info("welcome email: to=%s name=%s", to, fullName)
	return nil
}

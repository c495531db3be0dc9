package mailer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	message := buildMessage("Pollwise <no-reply@pollwise.dev>", "ada@example.com", "Hello", "Body text")

	assert.Contains(t, message, "From: Pollwise <no-reply@pollwise.dev>\r\n")
	assert.Contains(t, message, "To: ada@example.com\r\n")
	assert.Contains(t, message, "Subject: Hello\r\n")
	assert.Contains(t, message, "Content-Type: text/plain; charset=utf-8\r\n")
	assert.Contains(t, message, "\r\n\r\nBody text")
}

func TestParseAddress(t *testing.T) {
	assert.Equal(t, "no-reply@pollwise.dev", parseAddress("Pollwise <no-reply@pollwise.dev>"))
	assert.Equal(t, "no-reply@pollwise.dev", parseAddress("no-reply@pollwise.dev"))
	assert.Equal(t, "no-reply@pollwise.dev", parseAddress("  no-reply@pollwise.dev  "))
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(format string, args ...any) { l.record(format, args...) }
func (l *recordingLogger) Info(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Warn(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Error(format string, args ...any) { l.record(format, args...) }

func (l *recordingLogger) record(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestLogMailer(t *testing.T) {
	logger := &recordingLogger{}
	m := NewLogMailer(logger)
	ctx := context.Background()

	require.NoError(t, m.SendVerificationEmail(ctx, "ada@example.com", "123456"))
	require.NoError(t, m.SendPasswordResetEmail(ctx, "ada@example.com", "654321"))
	require.NoError(t, m.SendWelcomeEmail(ctx, "ada@example.com", "Ada Lovelace"))

	require.Len(t, logger.lines, 3)
	assert.Contains(t, logger.lines[0], "123456")
	assert.Contains(t, logger.lines[1], "654321")
	assert.Contains(t, logger.lines[2], "Ada Lovelace")
}

func TestSMTPMailerDefaults(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"})
	assert.Equal(t, "Pollwise", m.config.AppName)
}

func TestSMTPMailerRespectsContext(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendVerificationEmail(ctx, "ada@example.com", "123456")
	assert.ErrorIs(t, err, context.Canceled)
}

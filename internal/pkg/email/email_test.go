package email

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

func newTestService(cfg SMTPConfig) (*EmailServiceImpl, *[]sentMail) {
	s := NewEmailService(cfg, zerolog.Nop())
	var sent []sentMail
	s.send = func(to, subject, body string) error {
		sent = append(sent, sentMail{to, subject, body})
		return nil
	}
	return s, &sent
}

func TestUnconfiguredServiceOnlyLogs(t *testing.T) {
	s, sent := newTestService(SMTPConfig{BaseURL: "http://localhost:8080"})

	require.NoError(t, s.SendPasswordResetEmail("a@x.com", "a", "tok"))
	require.NoError(t, s.SendApplicationReceivedEmail("a@x.com", "a", "Backend", "b"))
	require.NoError(t, s.SendApplicationStatusEmail("a@x.com", "a", "Backend", "accepted"))
	assert.Empty(t, *sent)
}

func TestPasswordResetEmailCarriesLink(t *testing.T) {
	s, sent := newTestService(SMTPConfig{
		Host: "smtp.example.com", Port: 587, Username: "u", Password: "p",
		FromEmail: "noreply@example.com", BaseURL: "http://localhost:8080/",
	})

	require.NoError(t, s.SendPasswordResetEmail("a@x.com", "An", "abc123"))
	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "a@x.com", mail.to)
	assert.Contains(t, mail.body, "http://localhost:8080/reset-password?token=abc123")
	assert.Contains(t, mail.body, "An")
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("Alumni", "noreply@example.com", "a@x.com", "Hi", "<p>x</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: Alumni <noreply@example.com>\r\n"))
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>x</p>")
}

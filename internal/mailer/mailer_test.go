package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/triage-service/internal/config"
)

func TestSendWithoutCredentials(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Port: 587})
	assert.False(t, s.Configured())

	err := s.Send(context.Background(), Message{To: "test@example.com", Subject: "x", Body: "y"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildMessage(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "support@example.com",
		Password: "secret",
	})

	m, err := s.build(Message{
		To:      "test@example.com",
		Subject: "Case Update Notification",
		Body:    "Case 7 resolved: Cannot log in",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: <support@example.com>")
	assert.Contains(t, raw, "To: <test@example.com>")
	assert.Contains(t, raw, "Subject: Case Update Notification")
	assert.Contains(t, raw, "Case 7 resolved: Cannot log in")
}

func TestBuildRejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Username: "support@example.com", Password: "secret"})

	_, err := s.build(Message{To: "not an address", Subject: "s", Body: "b"})
	assert.Error(t, err)
}

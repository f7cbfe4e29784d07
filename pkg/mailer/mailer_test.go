package mailer

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckHeaders(t *testing.T) {
	assert.NoError(t, CheckHeaders("user@example.com", "Password Reset Requested"))
	assert.ErrorIs(t, CheckHeaders("user@example.com", "Subject\r\nBcc: evil@example.com"), ErrBadHeader)
}

func TestLogSender(t *testing.T) {
	var s Sender = LogSender{}
	assert.NoError(t, s.Send(context.Background(), "user@example.com", "hi", "body"))
	assert.ErrorIs(t, s.Send(context.Background(), "user@example.com\n", "hi", "body"), ErrBadHeader)
}

func TestLogSenderKeepsBodyOutOfLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	body := "https://ledger.test/password_reset/abc/secret-token/"
	assert.NoError(t, LogSender{}.Send(context.Background(), "user@example.com", "Password reset", body))
	assert.Contains(t, buf.String(), "user@example.com")
	assert.Contains(t, buf.String(), "Password reset")
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestSMTPSenderRejectsInjectedHeadersBeforeDialing(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525, From: "admin@example.com"})
	err := s.Send(context.Background(), "user@example.com", "a\nb", "body")
	assert.ErrorIs(t, err, ErrBadHeader)
}

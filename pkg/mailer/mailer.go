// Package mailer delivers plain text messages (password reset links).
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/wneessen/go-mail"
)

var ErrBadHeader = errors.New("invalid header found")

// Sender delivers one message to one recipient
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// CheckHeaders rejects header values that would allow header injection
func CheckHeaders(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return ErrBadHeader
		}
	}
	return nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := CheckHeaders(to, subject, s.cfg.From); err != nil {
		return err
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("%w: from: %v", ErrBadHeader, err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("%w: to: %v", ErrBadHeader, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender records that a message would have been sent. Used when no SMTP host is configured.
// The body is never logged since it may carry a password reset link.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, body string) error {
	if err := CheckHeaders(to, subject); err != nil {
		return err
	}
	log.Printf("📧 mail not sent (no SMTP host): to=%s subject=%q body=%d bytes", to, subject, len(body))
	return nil
}

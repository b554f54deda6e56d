package email

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/resend/resend-go/v2"
)

// Sender delivers one HTML email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// SMTPSender sends emails through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := buildMessage(s.from, to, subject, body)
	if err := s.send(s.addr, s.auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

type Options struct {
	Env          string
	From         string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

// NewSender picks a transport: LogSender for ENV=local, otherwise Resend
// when an API key is set, otherwise SMTP.
func NewSender(opts Options, logger *slog.Logger) Sender {
	if opts.Env == "local" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	if opts.ResendAPIKey != "" {
		return &ResendSender{
			client: resend.NewClient(opts.ResendAPIKey),
			from:   opts.From,
		}
	}
	var auth smtp.Auth
	if opts.SMTPUsername != "" {
		auth = smtp.PlainAuth("", opts.SMTPUsername, opts.SMTPPassword, opts.SMTPHost)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(opts.SMTPHost, opts.SMTPPort),
		auth: auth,
		from: opts.From,
		send: smtp.SendMail,
	}
}

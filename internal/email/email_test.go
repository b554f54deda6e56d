package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSender_PicksTransport(t *testing.T) {
	logger := discardLogger()

	assert.IsType(t, &LogSender{}, NewSender(Options{Env: "local", ResendAPIKey: "re_x"}, logger))
	assert.IsType(t, &ResendSender{}, NewSender(Options{Env: "production", ResendAPIKey: "re_x"}, logger))

	s := NewSender(Options{Env: "production", SMTPHost: "smtp.example.com", SMTPPort: "587"}, logger)
	require.IsType(t, &SMTPSender{}, s)
	assert.Equal(t, "smtp.example.com:587", s.(*SMTPSender).addr)
}

func TestSMTPSender_BuildsHTMLMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := &SMTPSender{
		addr: "smtp.example.com:587",
		from: "no-reply@example.com",
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		},
	}

	require.NoError(t, s.Send(context.Background(), "user@example.com", "Hello", "<p>body</p>"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@example.com", gotFrom)
	assert.Equal(t, []string{"user@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>body</p>\r\n"))
}

func TestSMTPSender_WrapsTransportError(t *testing.T) {
	transportErr := errors.New("connection refused")
	s := &SMTPSender{send: func(string, smtp.Auth, string, []string, []byte) error { return transportErr }}

	err := s.Send(context.Background(), "user@example.com", "s", "b")
	assert.ErrorIs(t, err, transportErr)
}

func TestRenderResetRequest_EscapesName(t *testing.T) {
	body, err := RenderResetRequest(ResetRequestData{
		Name:     `<script>alert(1)</script>`,
		Link:     "https://api.example.com/api/user/reset/abc",
		ValidFor: "5 minutes",
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `href="https://api.example.com/api/user/reset/abc"`)
	assert.Contains(t, body, "5 minutes")
}

func TestRenderPasswordChanged(t *testing.T) {
	body, err := RenderPasswordChanged(PasswordChangedData{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Contains(t, body, "ann@example.com")
	assert.Contains(t, body, "Hi Ann")
}

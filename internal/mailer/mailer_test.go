package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meme-journalist/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEmail() *Email {
	return &Email{
		From:    "bot@example.com",
		To:      []string{"me@example.com"},
		Subject: "Top memes",
		HTML:    "<p>hi</p>",
	}
}

func TestEmailValidate(t *testing.T) {
	require.NoError(t, validEmail().Validate())

	e := validEmail()
	e.From = ""
	assert.ErrorIs(t, e.Validate(), ErrNoSender)

	e = validEmail()
	e.To = nil
	assert.ErrorIs(t, e.Validate(), ErrNoRecipient)

	e = validEmail()
	e.Subject = ""
	assert.ErrorIs(t, e.Validate(), ErrNoSubject)

	e = validEmail()
	e.HTML = ""
	assert.ErrorIs(t, e.Validate(), ErrNoContent)
}

func TestTransportErrorUnwraps(t *testing.T) {
	inner := errors.New("535 authentication failed")
	err := error(&TransportError{Transport: "smtp", Err: inner})
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "smtp transport: 535 authentication failed", err.Error())
	assert.False(t, IsTransportError(inner))
}

func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestSMTPSendConnectionRefused(t *testing.T) {
	s := NewSMTP(SMTPConfig{
		Host:     "127.0.0.1",
		Port:     closedPort(t),
		Username: "bot@example.com",
		Password: "secret",
		Timeout:  2 * time.Second,
	})
	err := s.Send(context.Background(), validEmail())
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "smtp", te.Transport)
}

func TestSMTPSendInvalidEmail(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "127.0.0.1"})
	err := s.Send(context.Background(), &Email{})
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestResendSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	s, err := NewResend("re_test", srv.URL)
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), validEmail()))
	assert.Equal(t, "Top memes", got["subject"])
	assert.Equal(t, "<p>hi</p>", got["html"])
	assert.Equal(t, "bot@example.com", got["from"])
}

func TestResendSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"statusCode":401,"name":"missing_api_key","message":"Missing API key"}`))
	}))
	defer srv.Close()

	s, err := NewResend("re_test", srv.URL)
	require.NoError(t, err)
	err = s.Send(context.Background(), validEmail())
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestFromConfig(t *testing.T) {
	s, err := FromConfig(config.EmailConfig{Transport: "smtp", SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587}})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	_, err = FromConfig(config.EmailConfig{Transport: "resend"})
	assert.Error(t, err)

	s, err = FromConfig(config.EmailConfig{Transport: "Resend", Resend: config.ResendConfig{APIKey: "re_x"}})
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	_, err = FromConfig(config.EmailConfig{Transport: "fax"})
	assert.Error(t, err)
}

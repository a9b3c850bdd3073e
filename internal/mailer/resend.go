package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v3"
)

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
}

// NewResend creates a Resend sender. baseURL is optional and overrides the API endpoint.
func NewResend(apiKey, baseURL string) (*ResendSender, error) {
	client := resend.NewClient(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("resend: invalid base url: %w", err)
		}
		client.BaseURL = u
	}
	return &ResendSender{client: client}, nil
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, email *Email) error {
	if err := email.Validate(); err != nil {
		return &TransportError{Transport: "resend", Err: err}
	}
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return &TransportError{Transport: "resend", Err: err}
	}
	return nil
}

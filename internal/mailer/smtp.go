package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds STARTTLS submission settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPSender delivers mail over an authenticated STARTTLS session.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTP creates an SMTP sender.
func NewSMTP(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	if err := email.Validate(); err != nil {
		return &TransportError{Transport: "smtp", Err: err}
	}
	msg, err := buildMsg(email)
	if err != nil {
		return &TransportError{Transport: "smtp", Err: err}
	}
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.cfg.Timeout),
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
		return &TransportError{Transport: "smtp", Err: fmt.Errorf("create client: %w", err)}
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &TransportError{Transport: "smtp", Err: err}
	}
	return nil
}

func buildMsg(email *Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	return msg, nil
}

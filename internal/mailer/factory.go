package mailer

import (
	"fmt"
	"strings"

	"meme-journalist/internal/config"
)

// FromConfig builds the configured transport.
func FromConfig(cfg config.EmailConfig) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", "smtp":
		return NewSMTP(SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}), nil
	case "resend":
		if strings.TrimSpace(cfg.Resend.APIKey) == "" {
			return nil, fmt.Errorf("resend transport requires email.resend.api_key")
		}
		return NewResend(cfg.Resend.APIKey, "")
	default:
		return nil, fmt.Errorf("unknown email transport %q", cfg.Transport)
	}
}

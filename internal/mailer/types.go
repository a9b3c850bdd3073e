package mailer

import "context"

// Email is a fully-prepared message ready for sending.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers an email. Every delivery failure is returned as a
// *TransportError.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Validate checks the fields every transport needs.
func (e *Email) Validate() error {
	switch {
	case e == nil:
		return ErrNoContent
	case e.From == "":
		return ErrNoSender
	case len(e.To) == 0 || e.To[0] == "":
		return ErrNoRecipient
	case e.Subject == "":
		return ErrNoSubject
	case e.HTML == "":
		return ErrNoContent
	}
	return nil
}

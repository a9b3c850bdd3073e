// Package publisher persists, renders and delivers one digest.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"meme-journalist/internal/ai"
	"meme-journalist/internal/digest"
	"meme-journalist/internal/mailer"
	"meme-journalist/internal/model"
)

// Recorder writes the daily record of a digest.
type Recorder interface {
	Save(t time.Time, d model.Digest) (string, error)
}

// Mirror keeps a copy of published digests outside the record directory.
type Mirror interface {
	SaveDigest(ctx context.Context, at time.Time, d model.Digest, ttl time.Duration) error
}

// Publisher persists a digest first and then emails it. Both steps are
// always attempted; only a persistence failure is returned.
type Publisher struct {
	Recorder Recorder
	Sender   mailer.Sender
	From     string
	To       []string
	Subject  string // optional override, supports {.CurrentDate} and {.Count}
	Template *digest.Template // nil means the built-in layout
	Render   digest.Options
	Language string

	Summarizer ai.Summarizer // optional
	Mirror     Mirror        // optional
	MirrorTTL  time.Duration

	Out io.Writer
}

// Result describes what happened to one digest.
type Result struct {
	RecordPath  string
	Delivered   bool
	DeliveryErr error
}

// Publish writes the record, sends the email and mirrors the digest.
func (p *Publisher) Publish(ctx context.Context, d model.Digest, now time.Time) (Result, error) {
	var res Result
	path, saveErr := p.Recorder.Save(now, d)
	if saveErr != nil {
		slog.Error("publisher: save record failed", "err", saveErr)
	} else {
		res.RecordPath = path
		fmt.Fprintf(p.out(), "💾 Saved to %s\n", path)
	}

	res.DeliveryErr = p.deliver(ctx, d, now)
	if res.DeliveryErr != nil {
		slog.Error("publisher: email failed", "err", res.DeliveryErr)
		fmt.Fprintf(p.out(), "❌ Failed to send email: %v\n", res.DeliveryErr)
	} else {
		res.Delivered = true
		fmt.Fprintln(p.out(), "✅ Email sent successfully!")
	}

	if saveErr != nil {
		return res, fmt.Errorf("save record: %w", saveErr)
	}
	if p.Mirror != nil {
		if err := p.Mirror.SaveDigest(ctx, now, d, p.MirrorTTL); err != nil {
			slog.Warn("publisher: mirror digest failed", "err", err)
		} else {
			slog.Debug("publisher: mirrored digest", "day", now.Format("20060102"), "count", len(d))
		}
	}
	return res, nil
}

// deliver renders and sends. Every failure comes back as a transport error.
func (p *Publisher) deliver(ctx context.Context, d model.Digest, now time.Time) error {
	html, err := p.RenderHTML(ctx, d, now)
	if err != nil {
		return &mailer.TransportError{Transport: "render", Err: err}
	}
	if p.Sender == nil {
		return &mailer.TransportError{Transport: "none", Err: errors.New("no mail transport configured")}
	}
	err = p.Sender.Send(ctx, &mailer.Email{
		From:    p.From,
		To:      p.To,
		Subject: p.template().Subject(p.Subject, now, len(d)),
		HTML:    html,
	})
	if err != nil && !mailer.IsTransportError(err) {
		err = &mailer.TransportError{Transport: "send", Err: err}
	}
	return err
}

// RenderHTML builds the email body, asking the summarizer for an intro when
// one is configured and no summary was given.
func (p *Publisher) RenderHTML(ctx context.Context, d model.Digest, now time.Time) (string, error) {
	opts := p.Render
	if opts.Summary == "" && p.Summarizer != nil && len(d) > 0 {
		intro, err := p.Summarizer.SummarizeDigest(ctx, d, p.Language)
		if err != nil {
			slog.Warn("publisher: intro skipped", "err", err)
		} else {
			opts.Summary = intro
		}
	}
	tpl := p.template()
	return tpl.Render(tpl.Build(d, now, opts))
}

func (p *Publisher) template() *digest.Template {
	if p.Template == nil {
		return digest.DefaultTemplate()
	}
	return p.Template
}

func (p *Publisher) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}

// Package schedule triggers a job at fixed times of day.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPollInterval is how often Run checks for a due slot.
const DefaultPollInterval = 60 * time.Second

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is one synchronous pipeline run.
type Job func(ctx context.Context) error

// Poller fires a job when the earliest pending slot has passed.
// It is not safe for concurrent use; Run drives it from a single goroutine.
type Poller struct {
	slots        []cron.Schedule
	next         time.Time
	PollInterval time.Duration
	Now          func() time.Time
}

// Daily builds a poller for HH:MM times of day. An empty tz means local time.
func Daily(times []string, tz string) (*Poller, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("schedule: no times given")
	}
	p := &Poller{PollInterval: DefaultPollInterval, Now: time.Now}
	for _, raw := range times {
		spec, err := cronSpec(raw, tz)
		if err != nil {
			return nil, err
		}
		s, err := parser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("schedule: parse %q: %w", raw, err)
		}
		p.slots = append(p.slots, s)
	}
	return p, nil
}

func cronSpec(hhmm, tz string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return "", fmt.Errorf("schedule: invalid time %q, want HH:MM", hhmm)
	}
	spec := fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	if tz = strings.TrimSpace(tz); tz != "" {
		spec = "CRON_TZ=" + tz + " " + spec
	}
	return spec, nil
}

// Next returns the earliest slot strictly after t.
func (p *Poller) Next(t time.Time) time.Time {
	var next time.Time
	for _, s := range p.slots {
		n := s.Next(t)
		if next.IsZero() || n.Before(next) {
			next = n
		}
	}
	return next
}

// Pending reports the slot the poller is waiting for. Zero until armed.
func (p *Poller) Pending() time.Time { return p.next }

// Arm sets the first pending slot relative to now. Slots earlier than now
// are not owed a run.
func (p *Poller) Arm(now time.Time) {
	p.next = p.Next(now)
}

// Tick runs job once if the pending slot is due at now, then re-arms from
// the time the job finished so slots missed while it ran collapse into it.
func (p *Poller) Tick(ctx context.Context, now time.Time, job Job) (bool, error) {
	if p.next.IsZero() {
		p.Arm(now)
		return false, nil
	}
	if now.Before(p.next) {
		return false, nil
	}
	err := job(ctx)
	after := p.clock()
	if after.Before(now) {
		after = now
	}
	p.Arm(after)
	return true, err
}

// Run polls until ctx is cancelled. A failed run is logged and polling continues.
func (p *Poller) Run(ctx context.Context, job Job) error {
	interval := p.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if p.next.IsZero() {
		p.Arm(p.clock())
	}
	slog.Info("schedule: armed", "next", p.next.Format(time.RFC3339), "poll_interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ran, err := p.Tick(ctx, p.clock(), job)
			if err != nil {
				slog.Error("schedule: run failed", "err", err)
			}
			if ran {
				slog.Info("schedule: next run", "at", p.next.Format(time.RFC3339))
			}
		}
	}
}

func (p *Poller) clock() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

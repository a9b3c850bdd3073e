package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"meme-journalist/internal/model"
	"meme-journalist/internal/publisher"
	"meme-journalist/internal/ranking"
	"meme-journalist/internal/schedule"

	"github.com/google/uuid"
)

// PostFetcher reads candidate posts from the configured communities.
type PostFetcher interface {
	Fetch(ctx context.Context, communities []string, perCommunityLimit int) ([]model.Post, error)
}

// DigestPublisher persists and delivers a finished digest.
type DigestPublisher interface {
	Publish(ctx context.Context, d model.Digest, now time.Time) (publisher.Result, error)
}

// PreviewSize is how many entries are echoed to the console after a run.
const PreviewSize = 3

// DigestBuilder runs fetch, rank and publish as one synchronous pipeline.
type DigestBuilder struct {
	Fetcher           PostFetcher
	Ranker            ranking.Ranker
	Publisher         DigestPublisher
	Communities       []string
	PerCommunityLimit int
	ResultLimit       int
	Schedule          *schedule.Poller // used by Start
	Out               io.Writer
	Now               func() time.Time
}

// Start runs the pipeline immediately, then at every scheduled slot until
// ctx is cancelled. Failed runs are logged and do not stop the worker.
func (w *DigestBuilder) Start(ctx context.Context) error {
	if w.Schedule == nil {
		return fmt.Errorf("digest-builder: no schedule configured")
	}
	// Slots that pass during the initial run are still owed a run.
	w.Schedule.Arm(w.now())
	if _, err := w.RunOnce(ctx); err != nil {
		slog.Error("digest-builder: initial run failed", "err", err)
	}
	return w.Schedule.Run(ctx, func(ctx context.Context) error {
		_, err := w.RunOnce(ctx)
		return err
	})
}

// RunOnce fetches, ranks and publishes one digest and prints a short preview.
// The start time is used for scoring, the record day and the email footer.
// An empty digest is reported and not published.
func (w *DigestBuilder) RunOnce(ctx context.Context) (model.Digest, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	out := w.out()
	now := w.now()
	fmt.Fprintf(out, "🚀 Starting meme digest at %s\n", now.Format("2006-01-02 15:04:05"))

	posts, err := w.Fetcher.Fetch(ctx, w.Communities, w.PerCommunityLimit)
	if err != nil {
		log.Error("digest-builder: fetch failed", "err", err)
		return nil, err
	}
	memes, err := w.Ranker.Rank(posts, now, w.ResultLimit)
	if err != nil {
		log.Error("digest-builder: rank failed", "err", err)
		return nil, err
	}
	log.Info("digest-builder: ranked", "posts", len(posts), "memes", len(memes))
	if len(memes) == 0 {
		fmt.Fprintln(out, "😕 No suitable memes found")
		return memes, nil
	}

	res, err := w.Publisher.Publish(ctx, memes, now)
	if err != nil {
		log.Error("digest-builder: publish failed", "err", err)
		return memes, err
	}
	log.Info("digest-builder: published",
		"record", res.RecordPath,
		"delivered", res.Delivered,
		"elapsed", w.now().Sub(now).Round(time.Millisecond).String(),
	)
	Preview(out, memes)
	return memes, nil
}

// Preview prints the leading entries with rounded hotness and link.
func Preview(out io.Writer, memes model.Digest) {
	fmt.Fprintf(out, "\n📋 Top %d preview:\n", min(PreviewSize, len(memes)))
	for i, m := range memes.Top(PreviewSize) {
		fmt.Fprintf(out, "%d. %s\n", i+1, m.Title)
		fmt.Fprintf(out, "   Hotness: %.0f\n", m.HotnessScore)
		fmt.Fprintf(out, "   Link: %s\n", m.SourcePageURL)
	}
}

func (w *DigestBuilder) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *DigestBuilder) out() io.Writer {
	if w.Out == nil {
		return io.Discard
	}
	return w.Out
}

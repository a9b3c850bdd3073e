package reddit

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"meme-journalist/internal/model"
)

// Lister lists currently popular posts of a community.
type Lister interface {
	Hot(ctx context.Context, community string, limit int) ([]model.Post, error)
}

// Fetcher walks a fixed list of communities one at a time.
type Fetcher struct {
	Source   Lister
	Progress io.Writer // per-community progress lines; nil discards them
}

// Fetch requests up to perCommunityLimit posts from each community in order
// and concatenates them. The first failing community aborts the fetch.
func (f *Fetcher) Fetch(ctx context.Context, communities []string, perCommunityLimit int) ([]model.Post, error) {
	out := f.Progress
	if out == nil {
		out = io.Discard
	}
	var posts []model.Post
	for _, name := range communities {
		fmt.Fprintf(out, "Fetching r/%s...\n", name)
		items, err := f.Source.Hot(ctx, name, perCommunityLimit)
		if err != nil {
			slog.Error("fetcher: community fetch failed", "community", name, "error", err)
			return nil, fmt.Errorf("fetch r/%s: %w", name, err)
		}
		slog.Info("fetcher: completed for community", "community", name, "posts", len(items))
		posts = append(posts, items...)
	}
	return posts, nil
}

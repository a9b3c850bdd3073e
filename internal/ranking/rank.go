package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"meme-journalist/internal/model"
)

const (
	scoreWeight   = 0.4
	commentWeight = 0.3 * 10
	ratioWeight   = 0.3 * 1000

	freshWindow = 24 * time.Hour
	staleDecay  = 0.5
)

// imageExtensions is matched case-sensitively against the end of the post URL.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// ErrMalformedPost is returned when a post carries numeric fields that cannot be scored.
var ErrMalformedPost = errors.New("malformed post")

// IsImage reports whether the URL points at a directly linked image.
func IsImage(url string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

// Hotness scores a post relative to now.
// Score = (score*0.4 + comments*3 + upvote_ratio*300) * decay,
// where decay is 1 for posts younger than 24h and 0.5 otherwise.
func Hotness(p model.Post, now time.Time) float64 {
	nowSec := float64(now.UnixNano()) / float64(time.Second)
	ageHours := (nowSec - p.CreatedUTC) / 3600
	decay := 1.0
	if ageHours >= freshWindow.Hours() {
		decay = staleDecay
	}
	return (float64(p.Score)*scoreWeight +
		float64(p.NumComments)*commentWeight +
		p.UpvoteRatio*ratioWeight) * decay
}

// Validate checks the numeric fields Hotness depends on.
func Validate(p model.Post) error {
	switch {
	case math.IsNaN(p.UpvoteRatio) || p.UpvoteRatio < 0 || p.UpvoteRatio > 1:
		return fmt.Errorf("%w %s: upvote_ratio %v out of [0,1]", ErrMalformedPost, p.ID, p.UpvoteRatio)
	case p.NumComments < 0:
		return fmt.Errorf("%w %s: negative num_comments %d", ErrMalformedPost, p.ID, p.NumComments)
	case math.IsNaN(p.CreatedUTC) || math.IsInf(p.CreatedUTC, 0) || p.CreatedUTC <= 0:
		return fmt.Errorf("%w %s: invalid created_utc %v", ErrMalformedPost, p.ID, p.CreatedUTC)
	}
	return nil
}

// Ranker turns fetched posts into a digest. WebBaseURL prefixes post
// permalinks; it defaults to https://reddit.com.
type Ranker struct {
	WebBaseURL string
}

// Rank ranks posts with the default web base URL.
func Rank(posts []model.Post, now time.Time, limit int) (model.Digest, error) {
	return Ranker{}.Rank(posts, now, limit)
}

// Rank keeps image posts, scores them, and returns the top limit entries
// ordered by descending hotness. Equal scores keep their input order.
// A single malformed image post fails the whole ranking.
func (r Ranker) Rank(posts []model.Post, now time.Time, limit int) (model.Digest, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("ranking: limit must be positive, got %d", limit)
	}
	out := make(model.Digest, 0, len(posts))
	for _, p := range posts {
		if !IsImage(p.URL) {
			continue
		}
		if err := Validate(p); err != nil {
			return nil, err
		}
		out = append(out, model.RankedMeme{
			Title:         p.Title,
			ImageURL:      p.URL,
			SourcePageURL: sourcePageURL(r.WebBaseURL, p.Permalink),
			Community:     p.Community,
			Score:         p.Score,
			CommentCount:  p.NumComments,
			UpvoteRatio:   p.UpvoteRatio,
			CreatedAt:     p.CreatedAt(),
			HotnessScore:  Hotness(p, now),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HotnessScore > out[j].HotnessScore
	})
	return out.Top(limit), nil
}

func sourcePageURL(base, permalink string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = "https://reddit.com"
	}
	if strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return base + permalink
}

package model

import (
	"math"
	"time"
)

// Post is a single item read from a community listing.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	CreatedUTC  float64 `json:"created_utc"` // unix seconds
	Community   string  `json:"community"`
}

// CreatedAt converts CreatedUTC into a time truncated to the second.
func (p Post) CreatedAt() time.Time {
	sec, _ := math.Modf(p.CreatedUTC)
	return time.Unix(int64(sec), 0)
}

// RankedMeme is a qualifying post decorated with its hotness score.
type RankedMeme struct {
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	SourcePageURL string    `json:"source_page_url"`
	Community     string    `json:"community"`
	Score         int       `json:"score"`
	CommentCount  int       `json:"comment_count"`
	UpvoteRatio   float64   `json:"upvote_ratio"`
	CreatedAt     time.Time `json:"created_at"`
	HotnessScore  float64   `json:"hotness_score"`
}

// Digest is the ranked, size-bounded result of one pipeline run.
type Digest []RankedMeme

// Top returns at most n leading entries.
func (d Digest) Top(n int) Digest {
	if n < 0 {
		n = 0
	}
	if len(d) > n {
		return d[:n]
	}
	return d
}

package cmd

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"meme-journalist/internal/ai"
	"meme-journalist/internal/config"
	"meme-journalist/internal/digest"
	"meme-journalist/internal/mailer"
	"meme-journalist/internal/publisher"
	"meme-journalist/internal/ranking"
	"meme-journalist/internal/record"
	"meme-journalist/internal/reddit"
	"meme-journalist/internal/redisclient"
	"meme-journalist/internal/storage"
	"meme-journalist/worker"
)

// newFetcher builds the Reddit fetcher from configuration.
func newFetcher(cfg config.Config, progress io.Writer) *reddit.Fetcher {
	if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientSecret == "" {
		slog.Warn("reddit: no client credentials configured, using public listings", "base_url", reddit.PublicBaseURL)
	}
	client := reddit.NewClient(reddit.Options{
		ClientID:          cfg.Reddit.ClientID,
		ClientSecret:      cfg.Reddit.ClientSecret,
		TokenURL:          cfg.Reddit.TokenURL,
		APIBaseURL:        cfg.Reddit.APIBaseURL,
		UserAgent:         cfg.Reddit.UserAgent,
		RequestsPerMinute: cfg.Reddit.RequestsPerMinute,
		Timeout:           config.Duration(cfg.Reddit.Timeout, 15*time.Second),
	})
	return &reddit.Fetcher{Source: client, Progress: progress}
}

// newSummarizer returns nil unless an OpenAI key is configured.
func newSummarizer(cfg config.OpenAIConfig) ai.Summarizer {
	if cfg.APIKey == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	s, err := ai.NewOpenAI(ai.Config{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL})
	if err != nil {
		slog.Warn("openai: intro disabled", "err", err)
		return nil
	}
	return s
}

func loadTemplate(cfg config.DigestConfig) (*digest.Template, error) {
	if strings.TrimSpace(cfg.TemplateFile) == "" {
		return digest.DefaultTemplate(), nil
	}
	return digest.LoadTemplate(cfg.TemplateFile)
}

func recipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// newPublisher builds the publisher. The returned closer releases the Redis
// connection when the mirror is enabled.
func newPublisher(cfg config.Config, out io.Writer) (*publisher.Publisher, func(), error) {
	tpl, err := loadTemplate(cfg.Digest)
	if err != nil {
		return nil, nil, err
	}
	p := &publisher.Publisher{
		Recorder: record.NewStore(cfg.Storage.Dir, cfg.Storage.FilePrefix),
		From:     cfg.Email.From,
		To:       recipients(cfg.Email.To),
		Subject:  cfg.Digest.Subject,
		Template: tpl,
		Render: digest.Options{
			Title:      cfg.Digest.Title,
			Preface:    cfg.Digest.Preface,
			Postscript: cfg.Digest.Postscript,
		},
		Language:   cfg.Digest.Language,
		Summarizer: newSummarizer(cfg.OpenAI),
		Out:        out,
	}
	// Without a sender every delivery fails with a transport error.
	if s, err := mailer.FromConfig(cfg.Email); err != nil {
		slog.Error("mailer: transport unavailable", "err", err)
	} else {
		p.Sender = s
	}

	closer := func() {}
	if cfg.Redis.Enabled {
		rdb := redisclient.New(cfg.Redis)
		p.Mirror = storage.NewRedisStore(rdb)
		p.MirrorTTL = config.Duration(cfg.Redis.TTL, 30*24*time.Hour)
		closer = func() { rdb.Close() }
	}
	return p, closer, nil
}

// newDigestBuilder wires fetch, rank and publish for one process.
func newDigestBuilder(cfg config.Config, out io.Writer) (*worker.DigestBuilder, func(), error) {
	pub, closer, err := newPublisher(cfg, out)
	if err != nil {
		return nil, nil, err
	}
	return &worker.DigestBuilder{
		Fetcher:           newFetcher(cfg, out),
		Ranker:            ranking.Ranker{WebBaseURL: cfg.Reddit.WebBaseURL},
		Publisher:         pub,
		Communities:       cfg.Digest.Communities,
		PerCommunityLimit: cfg.Digest.PerCommunityLimit,
		ResultLimit:       cfg.Digest.ResultLimit,
		Out:               out,
	}, closer, nil
}

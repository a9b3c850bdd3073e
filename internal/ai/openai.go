package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"meme-journalist/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer writes the short intro shown above the meme list.
type Summarizer interface {
	// SummarizeDigest describes the mood of a digest in one or two sentences in the given language.
	SummarizeDigest(ctx context.Context, memes model.Digest, language string) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model must be specified")
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	return &OpenAIClient{client: c, model: cfg.Model}, nil
}

func (o *OpenAIClient) SummarizeDigest(ctx context.Context, memes model.Digest, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()
	if len(memes) == 0 {
		return "", nil
	}
	b := &strings.Builder{}
	for i, m := range memes {
		if i >= 10 {
			break
		}
		fmt.Fprintf(b, "- %s (r/%s)\n", m.Title, m.Community)
	}
	sys := fmt.Sprintf(`
		You introduce a daily email of internet memes. Write in %s.
		Return 1 ~ 2 sentences (15–60 words) that capture the overall vibe of today's picks.
		Be playful and warm. Do not list the titles. No links, no hashtags, plain text only.
		`, langOrDefault(language))
	user := fmt.Sprintf("Today's memes (title and community):\n%s\nTask: Write the intro.", b.String())
	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: summarize digest error", "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}

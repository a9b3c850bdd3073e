package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json
}

// RedditConfig holds the content API credentials and endpoints.
type RedditConfig struct {
	ClientID          string `mapstructure:"client_id"`
	ClientSecret      string `mapstructure:"client_secret"`
	UserAgent         string `mapstructure:"user_agent"`
	TokenURL          string `mapstructure:"token_url"`
	APIBaseURL        string `mapstructure:"api_base_url"`
	WebBaseURL        string `mapstructure:"web_base_url"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Timeout           string `mapstructure:"timeout"` // duration string, e.g., "15s"
}

// DigestConfig controls what goes into a digest and how it reads.
type DigestConfig struct {
	Communities       []string `mapstructure:"communities"`
	PerCommunityLimit int      `mapstructure:"per_community_limit"`
	ResultLimit       int      `mapstructure:"result_limit"`
	Title             string   `mapstructure:"title"`
	Subject           string   `mapstructure:"subject"`
	Preface           string   `mapstructure:"preface"`
	Postscript        string   `mapstructure:"postscript"`
	Language          string   `mapstructure:"language"`
	TemplateFile      string   `mapstructure:"template_file"` // optional HTML layout with frontmatter
}

// SMTPConfig holds STARTTLS submission settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ResendConfig holds Resend API settings.
type ResendConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// EmailConfig selects the mail transport and addresses.
type EmailConfig struct {
	Transport string       `mapstructure:"transport"` // smtp or resend
	From      string       `mapstructure:"from"`
	To        string       `mapstructure:"to"`
	SMTP      SMTPConfig   `mapstructure:"smtp"`
	Resend    ResendConfig `mapstructure:"resend"`
}

// StorageConfig controls where daily JSON records are written.
type StorageConfig struct {
	Dir        string `mapstructure:"dir"`
	FilePrefix string `mapstructure:"file_prefix"`
}

// ScheduleConfig holds the resident mode trigger times.
type ScheduleConfig struct {
	Times        []string `mapstructure:"times"`         // HH:MM, local time
	PollInterval string   `mapstructure:"poll_interval"` // duration string, e.g., "60s"
	Timezone     string   `mapstructure:"timezone"`      // IANA name; empty means local
}

// RedisConfig holds redis connection settings for the optional digest mirror.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      string `mapstructure:"ttl"` // duration string, e.g., "720h"
}

// OpenAIConfig enables the optional intro paragraph.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Reddit   RedditConfig   `mapstructure:"reddit"`
	Digest   DigestConfig   `mapstructure:"digest"`
	Email    EmailConfig    `mapstructure:"email"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
}

// DefaultCommunities are polled when no communities are configured.
var DefaultCommunities = []string{"memes", "dankmemes", "me_irl", "wholesomememes"}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "MemeBot 1.0"
	}
	if c.Reddit.TokenURL == "" {
		c.Reddit.TokenURL = "https://www.reddit.com/api/v1/access_token"
	}
	if c.Reddit.APIBaseURL == "" {
		c.Reddit.APIBaseURL = "https://oauth.reddit.com"
	}
	if c.Reddit.WebBaseURL == "" {
		c.Reddit.WebBaseURL = "https://reddit.com"
	}
	if c.Reddit.RequestsPerMinute == 0 {
		c.Reddit.RequestsPerMinute = 60
	}
	if c.Reddit.Timeout == "" {
		c.Reddit.Timeout = "15s"
	}
	if len(c.Digest.Communities) == 0 {
		c.Digest.Communities = append([]string(nil), DefaultCommunities...)
	}
	if c.Digest.PerCommunityLimit == 0 {
		c.Digest.PerCommunityLimit = 25
	}
	if c.Digest.ResultLimit == 0 {
		c.Digest.ResultLimit = 10
	}
	if c.Email.Transport == "" {
		c.Email.Transport = "smtp"
	}
	if c.Email.SMTP.Host == "" {
		c.Email.SMTP.Host = "smtp.gmail.com"
	}
	if c.Email.SMTP.Port == 0 {
		c.Email.SMTP.Port = 587
	}
	if c.Email.SMTP.Username == "" {
		c.Email.SMTP.Username = c.Email.From
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "."
	}
	if c.Storage.FilePrefix == "" {
		c.Storage.FilePrefix = "memes_"
	}
	if len(c.Schedule.Times) == 0 {
		c.Schedule.Times = []string{"09:00", "18:00"}
	}
	if c.Schedule.PollInterval == "" {
		c.Schedule.PollInterval = "60s"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.TTL == "" {
		c.Redis.TTL = "720h"
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Digest.PerCommunityLimit <= 0 {
		errs = append(errs, fmt.Errorf("digest.per_community_limit must be positive, got %d", c.Digest.PerCommunityLimit))
	}
	if c.Digest.ResultLimit <= 0 {
		errs = append(errs, fmt.Errorf("digest.result_limit must be positive, got %d", c.Digest.ResultLimit))
	}
	for _, n := range c.Digest.Communities {
		if strings.TrimSpace(n) == "" {
			errs = append(errs, errors.New("digest.communities contains an empty name"))
			break
		}
	}
	for _, field := range []struct{ name, value string }{
		{"reddit.timeout", c.Reddit.Timeout},
		{"schedule.poll_interval", c.Schedule.PollInterval},
		{"redis.ttl", c.Redis.TTL},
	} {
		if _, err := time.ParseDuration(field.value); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", field.name, err))
		}
	}
	for _, t := range c.Schedule.Times {
		if _, err := time.Parse("15:04", strings.TrimSpace(t)); err != nil {
			errs = append(errs, fmt.Errorf("schedule.times: invalid time %q, want HH:MM", t))
		}
	}
	if c.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("invalid schedule.timezone: %w", err))
		}
	}
	switch strings.ToLower(c.Email.Transport) {
	case "smtp", "resend":
	default:
		errs = append(errs, fmt.Errorf("email.transport must be smtp or resend, got %q", c.Email.Transport))
	}
	return errors.Join(errs...)
}

// Duration parses a duration string that Validate already accepted.
func Duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

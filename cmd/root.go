package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"meme-journalist/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "meme-journalist",
	Short: "Daily Reddit meme digest by email",
	Long:  "Fetches hot image posts from Reddit, ranks them by hotness, emails the top ones and keeps a daily JSON record.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := appCfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

// envKeys are the settings that may come from MEMEJ_* variables, e.g.
// MEMEJ_REDDIT_CLIENT_SECRET or MEMEJ_EMAIL_SMTP_PASSWORD.
var envKeys = []string{
	"app.log_level", "app.log_format",
	"reddit.client_id", "reddit.client_secret", "reddit.user_agent",
	"reddit.token_url", "reddit.api_base_url", "reddit.web_base_url",
	"reddit.requests_per_minute", "reddit.timeout",
	"digest.per_community_limit", "digest.result_limit", "digest.title",
	"digest.subject", "digest.language", "digest.template_file",
	"email.transport", "email.from", "email.to",
	"email.smtp.host", "email.smtp.port", "email.smtp.username", "email.smtp.password",
	"email.resend.api_key",
	"storage.dir", "storage.file_prefix",
	"schedule.poll_interval", "schedule.timezone",
	"redis.enabled", "redis.addr", "redis.username", "redis.password", "redis.db", "redis.ttl",
	"openai.api_key", "openai.model", "openai.base_url",
}

func initConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "error reading .env: %v\n", err)
		os.Exit(1)
	}

	v := viper.GetViper()
	v.SetEnvPrefix("MEMEJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			fmt.Fprintf(os.Stderr, "error binding env for %s: %v\n", k, err)
			os.Exit(1)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/meme-journalist")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	slog.SetDefault(newLogger(appCfg.App))
}

// newLogger builds the process logger. Logs go to stderr so stdout carries
// only the console report.
func newLogger(cfg config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}

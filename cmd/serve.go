package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meme-journalist/internal/config"
	"meme-journalist/internal/schedule"
	"meme-journalist/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a digest now, then at every scheduled time of day",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		poller, err := schedule.Daily(cfg.Schedule.Times, cfg.Schedule.Timezone)
		if err != nil {
			return err
		}
		poller.PollInterval = config.Duration(cfg.Schedule.PollInterval, schedule.DefaultPollInterval)

		b, closer, err := newDigestBuilder(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closer()
		b.Schedule = poller

		mgr := worker.NewManager(b)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("serve: shutting down", "signal", s.String())
			cancel()
		}()

		slog.Info("serve: started", "times", cfg.Schedule.Times, "timezone", cfg.Schedule.Timezone, "poll_interval", poller.PollInterval.Round(time.Second).String())
		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"meme-journalist/internal/redisclient"
	"meme-journalist/internal/storage"

	"github.com/spf13/cobra"
)

// pingCmd checks the mirror connection and reports the latest mirrored day.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and show the latest mirrored digest day",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		res, err := rdb.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		fmt.Fprintln(out, res)
		if !cfg.Redis.Enabled {
			fmt.Fprintln(out, "mirror: disabled (redis.enabled=false)")
			return nil
		}
		days, err := storage.NewRedisStore(rdb).Days(ctx, 1)
		if err != nil {
			return err
		}
		if len(days) == 0 {
			fmt.Fprintln(out, "mirror: no digests yet")
			return nil
		}
		fmt.Fprintf(out, "mirror: latest digest %s\n", days[0])
		return nil
	},
}

func init() {
	redisCmd.AddCommand(pingCmd)
}

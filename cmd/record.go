package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"meme-journalist/internal/model"
	"meme-journalist/internal/record"
	"meme-journalist/internal/redisclient"
	"meme-journalist/internal/storage"

	"github.com/spf13/cobra"
)

var (
	recordFromRedis bool
	recordRaw       bool
	recordListLimit int
)

// recordCmd groups commands that read back published digests.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Inspect published digests",
}

var recordShowCmd = &cobra.Command{
	Use:   "show [YYYYMMDD]",
	Short: "Print the digest of a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		day := time.Now()
		if len(args) == 1 {
			d, err := record.ParseDay(args[0])
			if err != nil {
				return fmt.Errorf("invalid day %q, want YYYYMMDD", args[0])
			}
			day = d
		}

		var memes model.Digest
		if recordFromRedis {
			rdb := redisclient.New(cfg.Redis)
			defer rdb.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			d, err := storage.NewRedisStore(rdb).LoadDigest(ctx, day.Format(record.DayLayout))
			if err != nil {
				return err
			}
			memes = d
		} else {
			d, err := record.NewStore(cfg.Storage.Dir, cfg.Storage.FilePrefix).Load(day)
			if err != nil {
				return err
			}
			memes = d
		}

		out := cmd.OutOrStdout()
		if recordRaw {
			b, err := record.Encode(memes)
			if err != nil {
				return err
			}
			_, err = out.Write(b)
			return err
		}
		printDigest(out, memes)
		return nil
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List days that have a digest, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		var days []string
		if recordFromRedis {
			rdb := redisclient.New(cfg.Redis)
			defer rdb.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			d, err := storage.NewRedisStore(rdb).Days(ctx, recordListLimit)
			if err != nil {
				return err
			}
			days = d
		} else {
			d, err := recordDays(cfg.Storage.Dir, cfg.Storage.FilePrefix, recordListLimit)
			if err != nil {
				return err
			}
			days = d
		}
		for _, d := range days {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		return nil
	},
}

// recordDays finds YYYYMMDD record files in dir, newest first.
func recordDays(dir, prefix string, n int) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*.json"))
	if err != nil {
		return nil, err
	}
	var days []string
	for _, m := range matches {
		day := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), prefix), ".json")
		if _, err := record.ParseDay(day); err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	if n > 0 && len(days) > n {
		days = days[:n]
	}
	return days, nil
}

func printDigest(out io.Writer, memes model.Digest) {
	if len(memes) == 0 {
		fmt.Fprintln(out, "(empty digest)")
		return
	}
	for i, m := range memes {
		fmt.Fprintf(out, "%2d. %s\n", i+1, m.Title)
		fmt.Fprintf(out, "    r/%s | Hotness: %.0f | 👍 %d | 💬 %d | %s\n",
			m.Community, m.HotnessScore, m.Score, m.CommentCount, m.CreatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "    %s\n", m.SourcePageURL)
	}
}

func init() {
	recordCmd.PersistentFlags().BoolVar(&recordFromRedis, "redis", false, "read from the Redis mirror instead of the record directory")
	recordShowCmd.Flags().BoolVar(&recordRaw, "json", false, "print the stored JSON")
	recordListCmd.Flags().IntVarP(&recordListLimit, "limit", "n", 30, "maximum number of days")
	recordCmd.AddCommand(recordShowCmd, recordListCmd)
	rootCmd.AddCommand(recordCmd)
}

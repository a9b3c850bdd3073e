package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"meme-journalist/internal/ranking"

	"github.com/spf13/cobra"
)

// renderCmd previews the email body without sending or recording anything.
var renderCmd = &cobra.Command{
	Use:   "render <out.html>",
	Short: "Fetch and rank now, write the email HTML to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()
		pub, closer, err := newPublisher(cfg, out)
		if err != nil {
			return err
		}
		defer closer()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		posts, err := newFetcher(cfg, out).Fetch(ctx, cfg.Digest.Communities, cfg.Digest.PerCommunityLimit)
		if err != nil {
			return err
		}
		now := time.Now()
		memes, err := ranking.Ranker{WebBaseURL: cfg.Reddit.WebBaseURL}.Rank(posts, now, cfg.Digest.ResultLimit)
		if err != nil {
			return err
		}
		html, err := pub.RenderHTML(ctx, memes, now)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], []byte(html), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "Rendered %d memes to %s\n", len(memes), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runCmd runs the pipeline exactly once.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, rank, email and record one digest, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, closer, err := newDigestBuilder(GetConfig(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closer()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		defer stop()
		_, err = b.RunOnce(ctx)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

package cmd

import "github.com/spf13/cobra"

// redisCmd groups commands for the optional digest mirror.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Digest mirror utilities",
}

func init() {
	rootCmd.AddCommand(redisCmd)
}

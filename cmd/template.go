package cmd

import (
	"fmt"
	"sort"
	"time"

	"meme-journalist/internal/digest"
	"meme-journalist/internal/model"

	"github.com/spf13/cobra"
)

// templateCheckCmd validates a custom digest layout before it is configured.
var templateCheckCmd = &cobra.Command{
	Use:   "template-check [layout_path]",
	Short: "Parse a digest layout and print its frontmatter keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl := digest.DefaultTemplate()
		if len(args) == 1 {
			t, err := digest.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			tpl = t
		}
		out := cmd.OutOrStdout()
		keys := make([]string, 0, len(tpl.Meta()))
		for k := range tpl.Meta() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(out, "frontmatter keys: %v\n", keys)

		now := time.Now()
		sample := model.Digest{{Title: "Sample meme", ImageURL: "https://i.redd.it/sample.jpg", SourcePageURL: "https://reddit.com/r/memes", Community: "memes", HotnessScore: 1}}
		html, err := tpl.Render(tpl.Build(sample, now, digest.Options{}))
		if err != nil {
			return fmt.Errorf("render sample: %w", err)
		}
		fmt.Fprintf(out, "subject: %s\n", tpl.Subject("", now, len(sample)))
		fmt.Fprintf(out, "sample body bytes: %d\n", len(html))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCheckCmd)
}

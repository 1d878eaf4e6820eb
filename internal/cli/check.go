package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/agora/internal/sources/board"
)

func checkCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check <board.yaml|url>",
		Short: "Validate a board document and print what it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			loader := board.NewLoader(args[0], board.WithRetry(1, 0))
			file, err := loader.Load(ctx)
			if err != nil {
				return err
			}
			b, err := board.NewMapper().Map(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:      %s\n", loader.Source())
			fmt.Fprintf(out, "users:       %d\n", len(b.Users))
			fmt.Fprintf(out, "discussions: %d\n", len(b.Discussions))
			fmt.Fprintf(out, "skipped:     %d\n", b.Skipped)
			fmt.Fprintf(out, "bad hashes:  %d\n", b.BadHashes)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}

// Package cli is the agora command line.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the agora command tree. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	serve := serveCmd()

	root := &cobra.Command{
		Use:   "agora",
		Short: "Team discussion board with per-session favorites",
		Long: `Agora serves a discussion board loaded from a YAML file or URL.

Signed-in users browse discussions and mark favorites, which are
highlighted in the list and pushed live to every open tab.
Configuration comes from AGORA_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(
		serve,
		versionCmd(),
		checkCmd(),
	)
	return root
}

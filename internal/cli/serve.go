package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/agora/internal/app"
	"github.com/MrSnakeDoc/agora/internal/config"
	"github.com/MrSnakeDoc/agora/internal/logger"
)

func serveCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = log.Sync() }()

			return app.Run(cfg, log)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "override AGORA_LOG_LEVEL (debug, info, warn, error)")
	return cmd
}

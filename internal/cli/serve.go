package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/logging"
	"github.com/me/mlfq/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cfg := config.DefaultServerConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mlfq API server",
		Long:  "Serve the simulation API, recording runs in a SQLite database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The CLI logs warnings only by default; a server should report requests.
			if f := cmd.Flag("log-level"); f != nil && !f.Changed && !flagDebug {
				logger = logging.NewLoggerWithWriter(slog.LevelInfo, flagLogFormat, cmd.ErrOrStderr())
			}
			return server.Run(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	cmd.Flags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (default ~/.mlfq/mlfq.db)")
	addLimitFlags(cmd, &cfg.Limits)
	return cmd
}

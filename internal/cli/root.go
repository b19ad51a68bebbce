package cli

import (
	"log/slog"
	"os"

	"github.com/me/mlfq/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking MLFQ_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("MLFQ_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the mlfq CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mlfq",
		Short: "mlfq: multi-level feedback queue scheduler simulator",
		Long: `mlfq simulates a multi-level feedback queue CPU scheduler over a fixed
process table and prints the resulting Gantt chart.

Workloads run locally with "mlfq run", or are recorded by an mlfq server
with "mlfq submit" and inspected with list, show, gantt and delete.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "mlfq server URL (or MLFQ_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", logging.FormatText, "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newSubmitCmd(),
		newListCmd(),
		newShowCmd(),
		newGanttCmd(),
		newDeleteCmd(),
		newServeCmd(),
	)

	return root
}

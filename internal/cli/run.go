package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/parser"
	"github.com/me/mlfq/internal/report"
	"github.com/me/mlfq/internal/scheduler"
	"github.com/me/mlfq/pkg/model"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var format, output string
	var stats, segments, quietConfig bool
	limits := config.DefaultLimits()

	cmd := &cobra.Command{
		Use:   "run <workload-file|->",
		Short: "Simulate a workload locally and print its Gantt chart",
		Long: `Parse a workload, echo the configuration and print the Gantt chart of
the simulated schedule. Use "-" to read the workload from stdin.

The text format is:

  queue_num = 2
  time_quantum = 2 4
  process_table_size = 2
  process_table =
  P1 0 5
  P2 1 3

YAML and JSON documents use the keys queue_num, time_quantum and
process_table (a list of name, arrival_time, burst_time).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, err := parser.New(logger).ParseFile(args[0], format)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			if apiErr := parser.NewValidator(limits, logger).Validate(wl); apiErr != nil {
				printFieldErrors(cmd.ErrOrStderr(), apiErr)
				return fmt.Errorf("%s: %s", args[0], apiErr.Message)
			}

			result, err := scheduler.New(logger).Simulate(*wl)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}

			run := &report.Run{Workload: *wl, Trace: result.Trace}
			if stats || output != report.FormatText {
				run.Stats = result.Stats
				run.Summary = &result.Summary
			}
			return report.Write(cmd.OutOrStdout(), output, run, report.Options{
				ShowConfig:   !quietConfig,
				ShowSegments: segments,
				ShowStats:    stats,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", parser.FormatAuto, "Workload format (auto, text, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", report.FormatText, "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print per-process timing statistics")
	cmd.Flags().BoolVar(&segments, "segments", false, "Print a table of Gantt chart segments")
	cmd.Flags().BoolVarP(&quietConfig, "quiet-config", "q", false, "Do not echo the parsed configuration")
	addLimitFlags(cmd, &limits)
	return cmd
}

// addLimitFlags registers flags overriding the workload size limits.
func addLimitFlags(cmd *cobra.Command, limits *config.Limits) {
	cmd.Flags().IntVar(&limits.MaxLevels, "max-levels", limits.MaxLevels, "Maximum number of priority levels")
	cmd.Flags().IntVar(&limits.MaxProcesses, "max-processes", limits.MaxProcesses, "Maximum number of processes")
	cmd.Flags().IntVar(&limits.MaxNameLength, "max-name-length", limits.MaxNameLength, "Maximum process name length")
}

// printFieldErrors lists the details of a validation error, one per line.
func printFieldErrors(w io.Writer, apiErr *model.APIError) {
	fmt.Fprintln(w, apiErr.Message+":")
	for _, d := range apiErr.Details {
		if d.Field != "" {
			fmt.Fprintf(w, "  - %s: %s\n", d.Field, d.Message)
		} else {
			fmt.Fprintf(w, "  - %s\n", d.Message)
		}
	}
}

// joinLabels renders labels as "k=v" pairs for table output.
func joinLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+"="+v)
	}
	slices.Sort(parts)
	return strings.Join(parts, ",")
}

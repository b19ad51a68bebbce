package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/me/mlfq/internal/parser"
	"github.com/me/mlfq/internal/report"
	"github.com/me/mlfq/pkg/model"
	"github.com/spf13/cobra"
)

// readStdin is swapped in tests.
var readStdin = func() ([]byte, error) { return io.ReadAll(os.Stdin) }

func newSubmitCmd() *cobra.Command {
	var name, format string
	var labels map[string]string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "submit <workload-file|->",
		Short: "Run a workload on the server and record the result",
		Long: `Send a workload document to the mlfq server. The server validates and
simulates it and records the run, including rejected workloads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			doc, err := readDocument(path)
			if err != nil {
				return err
			}
			if name == "" && path != "-" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			req := map[string]any{
				"name":     name,
				"labels":   labels,
				"document": string(doc),
				"format":   resolveFormat(path, format, doc),
			}
			subPath := "/api/v1/simulations/"
			if dryRun {
				subPath += "?dry_run=true"
			}

			resp, err := client.Post(subPath, req)
			var apiErr *model.APIError
			if err != nil && !errors.As(err, &apiErr) {
				return fmt.Errorf("submit: %w", err)
			}

			if dryRun {
				if apiErr != nil {
					printFieldErrors(cmd.ErrOrStderr(), apiErr)
					return errInvalid
				}
				return printDryRunReport(out, resp.Data)
			}

			var sim model.Simulation
			if len(resp.Data) > 0 && string(resp.Data) != "null" {
				if err := json.Unmarshal(resp.Data, &sim); err != nil {
					return fmt.Errorf("parse response: %w", err)
				}
			}
			if sim.ID != "" {
				fmt.Fprintf(out, "Simulation recorded: %s (state: %s)\n", sim.ID, sim.State)
			}
			if apiErr != nil {
				printFieldErrors(cmd.ErrOrStderr(), apiErr)
				return fmt.Errorf("simulation not run: %s", apiErr.Message)
			}
			return report.WriteGantt(out, sim.Trace)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Simulation name (default: file name)")
	cmd.Flags().StringVarP(&format, "format", "f", parser.FormatAuto, "Workload format (auto, text, yaml)")
	cmd.Flags().StringToStringVarP(&labels, "label", "l", nil, "Labels as key=value (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate on the server without running")
	return cmd
}

func printDryRunReport(w io.Writer, data json.RawMessage) error {
	var rep struct {
		Valid      bool               `json:"valid"`
		QueueNum   int                `json:"queue_num"`
		Processes  int                `json:"processes"`
		TotalBurst int                `json:"total_burst"`
		Errors     []model.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("parse dry-run report: %w", err)
	}

	fmt.Fprintln(w, "Dry-run:")
	if rep.Valid {
		fmt.Fprintln(w, "  Workload: valid")
	} else {
		fmt.Fprintln(w, "  Workload: INVALID")
	}
	fmt.Fprintf(w, "  Levels:      %d\n", rep.QueueNum)
	fmt.Fprintf(w, "  Processes:   %d\n", rep.Processes)
	fmt.Fprintf(w, "  Total burst: %d\n", rep.TotalBurst)

	if len(rep.Errors) > 0 {
		fmt.Fprintln(w, "  Errors:")
		for _, e := range rep.Errors {
			fmt.Fprintf(w, "    - %s: %s\n", e.Field, e.Message)
		}
	}

	fmt.Fprintln(w, "\nNo simulation recorded. Use without --dry-run to run it.")
	if !rep.Valid {
		return errInvalid
	}
	return nil
}

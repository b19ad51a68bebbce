package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/parser"
	"github.com/me/mlfq/pkg/model"
	"github.com/spf13/cobra"
)

// errInvalid is returned after the problems have already been printed.
var errInvalid = errors.New("workload is invalid")

func newValidateCmd() *cobra.Command {
	var format string
	var remote bool
	limits := config.DefaultLimits()

	cmd := &cobra.Command{
		Use:   "validate <workload-file|->",
		Short: "Check a workload without simulating it",
		Long: `Parse and validate a workload. With --remote the document is checked
by the server, using the server's limits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			if remote {
				doc, err := readDocument(path)
				if err != nil {
					return err
				}
				resp, err := client.Post("/api/v1/simulations/validate", map[string]any{
					"document": string(doc),
					"format":   resolveFormat(path, format, doc),
				})
				if err != nil {
					var apiErr *model.APIError
					if errors.As(err, &apiErr) {
						printFieldErrors(cmd.ErrOrStderr(), apiErr)
						return errInvalid
					}
					return fmt.Errorf("validate: %w", err)
				}
				var report struct {
					Valid      bool               `json:"valid"`
					QueueNum   int                `json:"queue_num"`
					Processes  int                `json:"processes"`
					TotalBurst int                `json:"total_burst"`
					Errors     []model.FieldError `json:"errors"`
				}
				if err := json.Unmarshal(resp.Data, &report); err != nil {
					return fmt.Errorf("parse response: %w", err)
				}
				if !report.Valid {
					printFieldErrors(cmd.ErrOrStderr(), model.NewValidationError("workload validation failed", report.Errors...))
					return errInvalid
				}
				fmt.Fprintf(out, "%s: valid (%d levels, %d processes, total burst %d)\n",
					path, report.QueueNum, report.Processes, report.TotalBurst)
				return nil
			}

			wl, err := parser.New(logger).ParseFile(path, format)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			if apiErr := parser.NewValidator(limits, logger).Validate(wl); apiErr != nil {
				printFieldErrors(cmd.ErrOrStderr(), apiErr)
				return errInvalid
			}
			fmt.Fprintf(out, "%s: valid (%d levels, %d processes, total burst %d)\n",
				path, wl.QueueNum, len(wl.Processes), wl.TotalBurst())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", parser.FormatAuto, "Workload format (auto, text, yaml)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Validate on the server instead of locally")
	addLimitFlags(cmd, &limits)
	return cmd
}

// readDocument reads a workload file, or stdin for "-".
func readDocument(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = readStdin()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	return data, nil
}

// resolveFormat settles "auto" on the client, where the file name is known.
func resolveFormat(path, format string, doc []byte) string {
	if format == "" || format == parser.FormatAuto {
		return parser.DetectFormat(path, doc)
	}
	return format
}

package cli

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/me/mlfq/internal/report"
	"github.com/me/mlfq/pkg/model"
	"github.com/spf13/cobra"
)

// getSimulation fetches one recorded simulation from the server.
func getSimulation(id string) (*model.Simulation, error) {
	resp, err := client.Get("/api/v1/simulations/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("get simulation: %w", err)
	}
	var sim model.Simulation
	if err := json.Unmarshal(resp.Data, &sim); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &sim, nil
}

func newShowCmd() *cobra.Command {
	var output string
	var stats bool

	cmd := &cobra.Command{
		Use:   "show <simulation_id>",
		Short: "Show a recorded simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := getSimulation(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch output {
			case report.FormatJSON:
				return report.WriteJSON(out, sim)
			case report.FormatYAML:
				return report.WriteYAML(out, sim)
			case report.FormatText:
			default:
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
			}

			fmt.Fprintf(out, "Simulation: %s\n", sim.ID)
			if sim.Name != "" {
				fmt.Fprintf(out, "  Name:    %s\n", sim.Name)
			}
			fmt.Fprintf(out, "  State:   %s\n", sim.State)
			if len(sim.Labels) > 0 {
				fmt.Fprintf(out, "  Labels:  %s\n", joinLabels(sim.Labels))
			}
			fmt.Fprintf(out, "  Created: %s\n", sim.CreatedAt.Format("2006-01-02 15:04:05"))
			if sim.Error != "" {
				fmt.Fprintf(out, "  Error:   %s\n", sim.Error)
			}
			fmt.Fprintln(out)

			run := &report.Run{Workload: sim.Workload, Trace: sim.Trace, Stats: sim.Stats, Summary: sim.Summary}
			if !sim.State.HasTrace() {
				report.WriteWorkload(out, sim.Workload)
				return nil
			}
			return report.WriteText(out, run, report.Options{ShowConfig: true, ShowStats: stats})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", report.FormatText, "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print per-process timing statistics")
	return cmd
}

func newGanttCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gantt <simulation_id>",
		Short: "Print the Gantt chart of a recorded simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/simulations/" + url.PathEscape(args[0]) + "/gantt")
			if err != nil {
				return fmt.Errorf("get gantt chart: %w", err)
			}
			var data struct {
				Chart string `json:"chart"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), data.Chart)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <simulation_id>",
		Short: "Delete a recorded simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/simulations/" + url.PathEscape(args[0])); err != nil {
				return fmt.Errorf("delete simulation: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Simulation deleted: %s\n", args[0])
			return nil
		},
	}
}

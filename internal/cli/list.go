package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/me/mlfq/pkg/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var state, name string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded simulations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if state != "" {
				q.Set("state", state)
			}
			if name != "" {
				q.Set("name", name)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				q.Set("offset", strconv.Itoa(offset))
			}
			path := "/api/v1/simulations/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list simulations: %w", err)
			}

			var sims []model.Simulation
			if err := json.Unmarshal(resp.Data, &sims); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sims) == 0 {
				fmt.Fprintln(out, "No simulations found.")
				return nil
			}

			rows := make([][]string, len(sims))
			for i, sim := range sims {
				makespan := "-"
				if sim.Summary != nil {
					makespan = strconv.Itoa(sim.Summary.Makespan)
				}
				rows[i] = []string{
					sim.ID,
					sim.Name,
					string(sim.State),
					strconv.Itoa(len(sim.Workload.Processes)),
					makespan,
					joinLabels(sim.Labels),
					sim.CreatedAt.Format("2006-01-02 15:04:05"),
				}
			}
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"ID", "Name", "State", "Procs", "Makespan", "Labels", "Created"})
			table.SetAutoFormatHeaders(false)
			table.SetBorder(false)
			table.AppendBulk(rows)
			table.Render()

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(sims), resp.Pagination.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Filter by state (COMPLETED, REJECTED, FAILED)")
	cmd.Flags().StringVar(&name, "name", "", "Filter by simulation name")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of simulations to show (server default 20)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of simulations to skip")
	return cmd
}

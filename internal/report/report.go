// Package report renders workloads and simulation results for terminals
// and machine consumers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/me/mlfq/pkg/model"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Run bundles everything produced for one workload. It is the document
// written by the json and yaml output formats.
type Run struct {
	Workload model.Workload       `json:"workload" yaml:"workload"`
	Trace    []model.Segment      `json:"trace" yaml:"trace"`
	Stats    []model.ProcessStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Summary  *model.Summary       `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Options controls the text rendering of a Run.
type Options struct {
	ShowConfig   bool
	ShowSegments bool
	ShowStats    bool
}

// Write renders r in the given format.
func Write(w io.Writer, format string, r *Run, opts Options) error {
	switch format {
	case "", FormatText:
		return WriteText(w, r, opts)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// WriteText writes the human-readable report: the parsed configuration,
// the Gantt chart line and, optionally, segment and statistics tables.
func WriteText(w io.Writer, r *Run, opts Options) error {
	if opts.ShowConfig {
		WriteWorkload(w, r.Workload)
		fmt.Fprintln(w)
	}
	if _, err := fmt.Fprintln(w, FormatGantt(r.Trace)); err != nil {
		return err
	}
	if opts.ShowSegments {
		fmt.Fprintln(w)
		WriteSegments(w, r.Trace)
	}
	if opts.ShowStats && r.Summary != nil {
		fmt.Fprintln(w)
		WriteStats(w, r.Stats, *r.Summary)
	}
	return nil
}

// WriteWorkload echoes the configuration in the keyword text format,
// followed by the process table.
func WriteWorkload(w io.Writer, wl model.Workload) {
	quanta := make([]string, len(wl.TimeQuantum))
	for i, q := range wl.TimeQuantum {
		quanta[i] = strconv.Itoa(q)
	}
	fmt.Fprintf(w, "queue_num = %d\n", wl.QueueNum)
	fmt.Fprintf(w, "time_quantum = %s\n", strings.Join(quanta, " "))
	fmt.Fprintln(w, "process_table =")

	rows := make([][]string, len(wl.Processes))
	for i, p := range wl.Processes {
		rows[i] = []string{p.Name, strconv.Itoa(p.ArrivalTime), strconv.Itoa(p.BurstTime)}
	}
	table := newTable(w)
	table.SetHeader([]string{"Process", "Arrival", "Burst"})
	table.AppendBulk(rows)
	table.Render()
}

// FormatGantt renders a trace as "Gantt Chart = 0 P1 2 P2 4 ...", listing
// each segment's process followed by its cumulative end time.
func FormatGantt(trace []model.Segment) string {
	var b strings.Builder
	b.WriteString("Gantt Chart = 0")
	t := 0
	for _, seg := range trace {
		t += seg.Duration
		fmt.Fprintf(&b, " %s %d", seg.Name, t)
	}
	return b.String()
}

// WriteGantt writes the single-line Gantt chart.
func WriteGantt(w io.Writer, trace []model.Segment) error {
	_, err := fmt.Fprintln(w, FormatGantt(trace))
	return err
}

// WriteSegments writes one table row per trace segment with its start and
// end time.
func WriteSegments(w io.Writer, trace []model.Segment) {
	rows := make([][]string, 0, len(trace))
	t := 0
	for _, seg := range trace {
		rows = append(rows, []string{
			seg.Name,
			strconv.Itoa(t),
			strconv.Itoa(t + seg.Duration),
			strconv.Itoa(seg.Duration),
		})
		t += seg.Duration
	}
	table := newTable(w)
	table.SetHeader([]string{"Process", "Start", "End", "Duration"})
	table.AppendBulk(rows)
	table.Render()
}

// WriteStats writes per-process timing with averages in the footer.
func WriteStats(w io.Writer, stats []model.ProcessStats, sum model.Summary) {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.Name,
			strconv.Itoa(s.Arrival),
			strconv.Itoa(s.Burst),
			strconv.Itoa(s.Start),
			strconv.Itoa(s.Completion),
			strconv.Itoa(s.Turnaround),
			strconv.Itoa(s.Waiting),
			strconv.Itoa(s.Response),
		}
	}
	table := newTable(w)
	table.SetHeader([]string{"Process", "Arrival", "Burst", "Start", "Exit", "Turnaround", "Wait", "Response"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "",
		fmt.Sprintf("Makespan\n%d", sum.Makespan),
		fmt.Sprintf("Average\n%.2f", sum.AverageTurnaround),
		fmt.Sprintf("Average\n%.2f", sum.AverageWaiting),
		fmt.Sprintf("Average\n%.2f", sum.AverageResponse),
	})
	table.Render()
	fmt.Fprintf(w, "Throughput: %.2f/t\n", sum.Throughput)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

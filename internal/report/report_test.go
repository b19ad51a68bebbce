package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/me/mlfq/pkg/model"
)

func seg(name string, d int) model.Segment {
	return model.Segment{Name: name, Duration: d}
}

func exampleRun() *Run {
	return &Run{
		Workload: model.Workload{
			QueueNum:    2,
			TimeQuantum: []int{2, 4},
			Processes: []model.ProcessSpec{
				{Name: "P1", ArrivalTime: 0, BurstTime: 5},
				{Name: "P2", ArrivalTime: 1, BurstTime: 3},
			},
		},
		Trace: []model.Segment{seg("P1", 2), seg("P2", 2), seg("P1", 3), seg("P2", 1)},
		Stats: []model.ProcessStats{
			{Name: "P1", Arrival: 0, Burst: 5, Start: 0, Completion: 7, Turnaround: 7, Waiting: 2, Response: 0},
			{Name: "P2", Arrival: 1, Burst: 3, Start: 2, Completion: 8, Turnaround: 7, Waiting: 4, Response: 1},
		},
		Summary: &model.Summary{Makespan: 8, AverageTurnaround: 7, AverageWaiting: 3, AverageResponse: 0.5, Throughput: 0.25},
	}
}

func TestFormatGantt(t *testing.T) {
	tests := []struct {
		name  string
		trace []model.Segment
		want  string
	}{
		{"empty", nil, "Gantt Chart = 0"},
		{"single", []model.Segment{seg("A", 10)}, "Gantt Chart = 0 A 10"},
		{"two level example", exampleRun().Trace, "Gantt Chart = 0 P1 2 P2 4 P1 7 P2 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatGantt(tt.trace); got != tt.want {
				t.Errorf("FormatGantt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteWorkload(t *testing.T) {
	var buf bytes.Buffer
	WriteWorkload(&buf, exampleRun().Workload)
	out := buf.String()
	for _, want := range []string{"queue_num = 2\n", "time_quantum = 2 4\n", "process_table =\n", "Process", "P2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name:    "chart only",
			want:    []string{"Gantt Chart = 0 P1 2 P2 4 P1 7 P2 8"},
			notWant: []string{"queue_num", "Turnaround", "Duration"},
		},
		{
			name: "everything",
			opts: Options{ShowConfig: true, ShowSegments: true, ShowStats: true},
			want: []string{"queue_num = 2", "Duration", "Turnaround", "3.00", "0.50", "Throughput: 0.25/t"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteText(&buf, exampleRun(), tt.opts); err != nil {
				t.Fatalf("WriteText: %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestWrite_StructuredFormats(t *testing.T) {
	var jsonBuf bytes.Buffer
	if err := Write(&jsonBuf, FormatJSON, exampleRun(), Options{}); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	var fromJSON Run
	if err := json.Unmarshal(jsonBuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if len(fromJSON.Trace) != 4 || fromJSON.Summary.Makespan != 8 {
		t.Errorf("json round trip lost data: %+v", fromJSON)
	}

	var yamlBuf bytes.Buffer
	if err := Write(&yamlBuf, FormatYAML, exampleRun(), Options{}); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}
	if !strings.Contains(yamlBuf.String(), "queue_num: 2") {
		t.Errorf("yaml output missing queue_num:\n%s", yamlBuf.String())
	}
	var fromYAML Run
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if fromYAML.Stats[1].Waiting != 4 {
		t.Errorf("yaml stats = %+v", fromYAML.Stats)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", exampleRun(), Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

package model

import "time"

// Simulation is a recorded run of the scheduler over one Workload. Format
// records the document format the workload was submitted in, if any.
type Simulation struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	State     SimulationState   `json:"state" yaml:"state"`
	Format    string            `json:"format,omitempty" yaml:"format,omitempty"`
	Workload  Workload          `json:"workload" yaml:"workload"`
	Trace     []Segment         `json:"trace,omitempty" yaml:"trace,omitempty"`
	Stats     []ProcessStats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Summary   *Summary          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
	Labels    map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
}

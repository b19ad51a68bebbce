package model

// ProcessSpec is one row of the process table as supplied by the caller.
type ProcessSpec struct {
	Name        string `json:"name" yaml:"name"`
	ArrivalTime int    `json:"arrival_time" yaml:"arrival_time"`
	BurstTime   int    `json:"burst_time" yaml:"burst_time"`
}

// Workload is everything the scheduler needs: the number of priority
// levels, the quantum per level and the processes to simulate.
type Workload struct {
	QueueNum    int           `json:"queue_num" yaml:"queue_num"`
	TimeQuantum []int         `json:"time_quantum" yaml:"time_quantum"`
	Processes   []ProcessSpec `json:"process_table" yaml:"process_table"`
}

// TotalBurst returns the CPU time needed by all processes together.
func (w *Workload) TotalBurst() int {
	total := 0
	for _, p := range w.Processes {
		total += p.BurstTime
	}
	return total
}

// Segment is one run-length-encoded entry of a Gantt chart.
type Segment struct {
	Name     string `json:"name" yaml:"name"`
	Duration int    `json:"duration" yaml:"duration"`
}

// ProcessStats holds the per-process timing derived from a finished trace.
type ProcessStats struct {
	Name       string `json:"name" yaml:"name"`
	Arrival    int    `json:"arrival_time" yaml:"arrival_time"`
	Burst      int    `json:"burst_time" yaml:"burst_time"`
	Start      int    `json:"start_time" yaml:"start_time"`
	Completion int    `json:"completion_time" yaml:"completion_time"`
	Turnaround int    `json:"turnaround_time" yaml:"turnaround_time"`
	Waiting    int    `json:"waiting_time" yaml:"waiting_time"`
	Response   int    `json:"response_time" yaml:"response_time"`
}

// Summary aggregates ProcessStats over a whole run.
type Summary struct {
	Makespan          int     `json:"makespan" yaml:"makespan"`
	AverageTurnaround float64 `json:"average_turnaround" yaml:"average_turnaround"`
	AverageWaiting    float64 `json:"average_waiting" yaml:"average_waiting"`
	AverageResponse   float64 `json:"average_response" yaml:"average_response"`
	Throughput        float64 `json:"throughput" yaml:"throughput"`
}

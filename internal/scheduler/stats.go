package scheduler

import "github.com/me/mlfq/pkg/model"

// Summarize derives per-process timing from a trace produced for w. Stats
// are returned in process table order. The trace is contiguous from t=0.
func Summarize(w model.Workload, trace []model.Segment) ([]model.ProcessStats, model.Summary) {
	type span struct {
		start, end int
		seen       bool
	}
	spans := make(map[string]*span, len(w.Processes))

	t := 0
	for _, seg := range trace {
		sp, ok := spans[seg.Name]
		if !ok {
			sp = &span{}
			spans[seg.Name] = sp
		}
		if !sp.seen {
			sp.start = t
			sp.seen = true
		}
		t += seg.Duration
		sp.end = t
	}

	stats := make([]model.ProcessStats, 0, len(w.Processes))
	var sum model.Summary
	sum.Makespan = t
	var totalTurnaround, totalWaiting, totalResponse int

	for _, p := range w.Processes {
		st := model.ProcessStats{Name: p.Name, Arrival: p.ArrivalTime, Burst: p.BurstTime}
		if sp, ok := spans[p.Name]; ok {
			st.Start = sp.start
			st.Completion = sp.end
			st.Turnaround = sp.end - p.ArrivalTime
			// The first process is dispatched at t=0 even if it arrives later.
			st.Waiting = max(0, st.Turnaround-p.BurstTime)
			st.Response = max(0, sp.start-p.ArrivalTime)
		}
		totalTurnaround += st.Turnaround
		totalWaiting += st.Waiting
		totalResponse += st.Response
		stats = append(stats, st)
	}

	if n := float64(len(stats)); n > 0 {
		sum.AverageTurnaround = float64(totalTurnaround) / n
		sum.AverageWaiting = float64(totalWaiting) / n
		sum.AverageResponse = float64(totalResponse) / n
		if sum.Makespan > 0 {
			sum.Throughput = n / float64(sum.Makespan)
		}
	}
	return stats, sum
}

package scheduler

import (
	"fmt"
	"sort"

	"github.com/me/mlfq/pkg/model"
)

// CheckContract returns every way w breaks the inputs the scheduler relies
// on. An empty result means Run can process w without an invariant failure.
func CheckContract(w model.Workload) []model.FieldError {
	var errs []model.FieldError

	if w.QueueNum < 1 {
		errs = append(errs, model.FieldError{Field: "queue_num", Message: "must be at least 1"})
	}
	if len(w.TimeQuantum) != w.QueueNum {
		errs = append(errs, model.FieldError{
			Field:   "time_quantum",
			Message: fmt.Sprintf("has %d values, queue_num is %d", len(w.TimeQuantum), w.QueueNum),
		})
	}
	for i, q := range w.TimeQuantum {
		if q <= 0 {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("time_quantum[%d]", i),
				Message: fmt.Sprintf("must be > 0, got %d", q),
			})
		}
	}

	if len(w.Processes) == 0 {
		return append(errs, model.FieldError{Field: "process_table", Message: "at least one process is required"})
	}

	rowErrs := checkRows(w.Processes)
	errs = append(errs, rowErrs...)
	if len(rowErrs) == 0 {
		errs = append(errs, checkIdleGaps(w.Processes)...)
	}
	return errs
}

func checkRows(procs []model.ProcessSpec) []model.FieldError {
	var errs []model.FieldError
	seen := make(map[string]int, len(procs))
	for i, p := range procs {
		field := fmt.Sprintf("process_table[%d]", i)
		if p.Name == "" {
			errs = append(errs, model.FieldError{Field: field + ".name", Message: "name is required"})
		} else if j, dup := seen[p.Name]; dup {
			errs = append(errs, model.FieldError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate name %q (also process_table[%d])", p.Name, j),
			})
		} else {
			seen[p.Name] = i
		}
		if p.ArrivalTime < 0 {
			errs = append(errs, model.FieldError{
				Field:   field + ".arrival_time",
				Message: fmt.Sprintf("must be >= 0, got %d", p.ArrivalTime),
			})
		}
		if p.BurstTime <= 0 {
			errs = append(errs, model.FieldError{
				Field:   field + ".burst_time",
				Message: fmt.Sprintf("must be > 0, got %d", p.BurstTime),
			})
		}
	}
	return errs
}

// checkIdleGaps rejects tables where the CPU would run out of work before
// the next arrival. The first process is dispatched at t=0 and the CPU
// never idles afterwards, so process k must arrive no later than the total
// burst of the processes ahead of it.
func checkIdleGaps(procs []model.ProcessSpec) []model.FieldError {
	order := make([]int, len(procs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return procs[order[a]].ArrivalTime < procs[order[b]].ArrivalTime
	})

	var errs []model.FieldError
	busyUntil := procs[order[0]].BurstTime
	for _, idx := range order[1:] {
		p := procs[idx]
		if p.ArrivalTime > busyUntil {
			errs = append(errs, model.FieldError{
				Field: fmt.Sprintf("process_table[%d].arrival_time", idx),
				Message: fmt.Sprintf("%s arrives at t=%d but all earlier work completes at t=%d; idle CPU time is not simulated",
					p.Name, p.ArrivalTime, busyUntil),
			})
		}
		busyUntil += p.BurstTime
	}
	return errs
}

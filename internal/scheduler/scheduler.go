package scheduler

import (
	"log/slog"

	"github.com/me/mlfq/internal/logging"
	"github.com/me/mlfq/pkg/model"
)

// Scheduler runs multi-level feedback queue simulations. It keeps no state
// between runs; every Run builds its own process table, queues and clock.
type Scheduler struct {
	logger *slog.Logger
}

// New creates a Scheduler that logs through logger. A nil logger discards.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{logger: logger.With("component", "scheduler")}
}

// Result is the outcome of a successful simulation.
type Result struct {
	Trace   []model.Segment
	Stats   []model.ProcessStats
	Summary model.Summary
}

// Run simulates w and returns its Gantt trace.
//
// A workload that breaks the scheduler's input contract is rejected with a
// *model.APIError before any tick is simulated. A *model.InvariantError
// means the scheduler reached an impossible state; no trace is returned.
func (s *Scheduler) Run(w model.Workload) ([]model.Segment, error) {
	if errs := CheckContract(w); len(errs) > 0 {
		return nil, model.NewValidationError("invalid workload", errs...)
	}

	sim, err := newSimulation(w, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("simulation started",
		"levels", w.QueueNum, "quantum", w.TimeQuantum, "processes", len(w.Processes))

	if err := sim.run(); err != nil {
		s.logger.Error("simulation aborted", logging.ErrAttr(err))
		return nil, err
	}

	trace := sim.trace.Segments()
	s.logger.Info("simulation finished",
		"processes", len(w.Processes), "makespan", sim.clock, "segments", len(trace))
	return trace, nil
}

// Simulate runs w and derives per-process statistics from the trace.
func (s *Scheduler) Simulate(w model.Workload) (*Result, error) {
	trace, err := s.Run(w)
	if err != nil {
		return nil, err
	}
	stats, summary := Summarize(w, trace)
	return &Result{Trace: trace, Stats: stats, Summary: summary}, nil
}

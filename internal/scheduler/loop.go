package scheduler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/me/mlfq/pkg/model"
)

// simulation is the state of one run. It is owned by a single Run call.
type simulation struct {
	clock       int
	table       *ProcessTable
	levels      *LevelQueues
	feed        *ArrivalFeed
	trace       GanttTrace
	outstanding int
	logger      *slog.Logger

	// beforeTick, when set, observes every tick just before it is
	// consumed by the head of level.
	beforeTick func(level int)
}

func newSimulation(w model.Workload, logger *slog.Logger) (*simulation, error) {
	table, err := NewProcessTable(w.Processes)
	if err != nil {
		return nil, err
	}
	return &simulation{
		table:       table,
		levels:      NewLevelQueues(table, w.TimeQuantum),
		feed:        NewArrivalFeed(table),
		outstanding: table.Len(),
		logger:      logger,
	}, nil
}

// run drives the simulation until every process has completed.
func (sim *simulation) run() error {
	first, ok := sim.feed.First()
	if !ok {
		return sim.violation("process table is empty")
	}
	if err := sim.levels.Enqueue(0, first); err != nil {
		return sim.wrap(err)
	}
	sim.logger.Debug("arrival", "process", first, "t", sim.clock, "level", 0)

	for sim.outstanding > 0 {
		level, err := sim.scan()
		if err != nil {
			return err
		}
		if err := sim.dispatch(level); err != nil {
			return err
		}
	}
	return nil
}

// scan returns the highest-priority level holding a ready process. It
// looks at each level once, always starting from level 0.
func (sim *simulation) scan() (int, error) {
	for level := 0; level < sim.levels.Levels(); level++ {
		if !sim.levels.IsEmpty(level) {
			return level, nil
		}
	}
	return 0, sim.violation(fmt.Sprintf("every level is empty with %d process(es) outstanding and %d not yet arrived",
		sim.outstanding, sim.feed.Pending()))
}

// admit moves at most one process due at the current tick to the tail of
// level 0 and reports whether one arrived. Processes sharing an arrival
// time are picked up by later checks in table order.
func (sim *simulation) admit() (bool, error) {
	name, ok := sim.feed.Next(sim.clock)
	if !ok {
		return false, nil
	}
	if err := sim.levels.Enqueue(0, name); err != nil {
		return false, sim.wrap(err)
	}
	sim.logger.Debug("arrival", "process", name, "t", sim.clock, "level", 0)
	return true, nil
}

// dispatch runs the head of level for one execution interval, records it in
// the trace and decides where the process goes next.
func (sim *simulation) dispatch(level int) error {
	name, _ := sim.levels.PeekFront(level)
	p, err := sim.table.Lookup(name)
	if err != nil {
		return sim.wrap(err)
	}

	start := sim.clock
	duration := 0
	for p.BurstTime > 0 && p.QuantumRemaining > 0 {
		arrived, err := sim.admit()
		if err != nil {
			return err
		}
		// Only level 0 work runs through an arrival; anything lower yields.
		if arrived && level != 0 {
			break
		}
		if sim.beforeTick != nil {
			sim.beforeTick(level)
		}
		sim.clock++
		duration++
		if err := sim.table.DecrementBurst(name); err != nil {
			return sim.wrap(err)
		}
		if err := sim.table.DecrementQuantum(name); err != nil {
			return sim.wrap(err)
		}
	}

	// An arrival exactly at the boundary is admitted before disposition.
	if _, err := sim.admit(); err != nil {
		return err
	}

	sim.trace.Append(name, duration)

	switch {
	case p.Completed():
		sim.levels.PopFront(level)
		sim.outstanding--
		sim.logger.Debug("completed", "process", name, "level", level, "start", start, "end", sim.clock)
	case p.QuantumRemaining == 0:
		sim.levels.PopFront(level)
		next := sim.levels.Demote(level)
		if err := sim.levels.Enqueue(next, name); err != nil {
			return sim.wrap(err)
		}
		sim.logger.Debug("demoted", "process", name, "from", level, "to", next,
			"start", start, "end", sim.clock, "burst_left", p.BurstTime)
	default:
		// Preempted: stays at the head of its level with burst and quantum intact.
		sim.logger.Debug("preempted", "process", name, "level", level,
			"start", start, "end", sim.clock, "quantum_left", p.QuantumRemaining)
	}
	return nil
}

func (sim *simulation) violation(reason string) error {
	return &model.InvariantError{Tick: sim.clock, Reason: reason}
}

func (sim *simulation) wrap(err error) error {
	var inv *model.InvariantError
	if errors.As(err, &inv) {
		return err
	}
	return &model.InvariantError{Tick: sim.clock, Err: err}
}

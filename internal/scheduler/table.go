package scheduler

import (
	"errors"
	"fmt"

	"github.com/me/mlfq/pkg/model"
)

// ErrProcessNotFound is returned when a process identifier has no entry in
// the table. Inside a run it means the scheduler itself is broken.
var ErrProcessNotFound = errors.New("process not found")

// Process is the mutable simulation record for one row of the process table.
type Process struct {
	Name             string
	ArrivalTime      int
	BurstTime        int // remaining CPU need; 0 means complete
	QuantumRemaining int // ticks left before demotion at the current level
}

// Completed reports whether the process has no CPU work left.
func (p *Process) Completed() bool {
	return p.BurstTime == 0
}

// ProcessTable owns every Process for the duration of a run. Its size is
// fixed at construction and records are never removed; queues refer to
// processes by name only.
type ProcessTable struct {
	procs []Process
	index map[string]int
}

// NewProcessTable builds a table from the caller's process specs, keeping
// their order.
func NewProcessTable(specs []model.ProcessSpec) (*ProcessTable, error) {
	t := &ProcessTable{
		procs: make([]Process, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for i, s := range specs {
		if _, dup := t.index[s.Name]; dup {
			return nil, fmt.Errorf("duplicate process name %q", s.Name)
		}
		t.procs[i] = Process{
			Name:        s.Name,
			ArrivalTime: s.ArrivalTime,
			BurstTime:   s.BurstTime,
		}
		t.index[s.Name] = i
	}
	return t, nil
}

// Len returns the number of processes in the table.
func (t *ProcessTable) Len() int {
	return len(t.procs)
}

// At returns the process at table position i.
func (t *ProcessTable) At(i int) *Process {
	return &t.procs[i]
}

// Lookup returns the process with exactly the given name.
func (t *ProcessTable) Lookup(name string) (*Process, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProcessNotFound, name)
	}
	return &t.procs[i], nil
}

// DecrementBurst consumes one tick of the named process's remaining burst.
func (t *ProcessTable) DecrementBurst(name string) error {
	p, err := t.Lookup(name)
	if err != nil {
		return err
	}
	if p.BurstTime <= 0 {
		return fmt.Errorf("process %q has no burst left", name)
	}
	p.BurstTime--
	return nil
}

// DecrementQuantum consumes one tick of the named process's current slice.
func (t *ProcessTable) DecrementQuantum(name string) error {
	p, err := t.Lookup(name)
	if err != nil {
		return err
	}
	if p.QuantumRemaining <= 0 {
		return fmt.Errorf("process %q has no quantum left", name)
	}
	p.QuantumRemaining--
	return nil
}

// ResetQuantum grants the named process a fresh slice of quantum ticks.
func (t *ProcessTable) ResetQuantum(name string, quantum int) error {
	p, err := t.Lookup(name)
	if err != nil {
		return err
	}
	p.QuantumRemaining = quantum
	return nil
}

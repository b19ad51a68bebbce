package model

// SimulationState is the outcome of a recorded simulation run.
type SimulationState string

const (
	SimulationStateCompleted SimulationState = "COMPLETED"
	SimulationStateRejected  SimulationState = "REJECTED"
	SimulationStateFailed    SimulationState = "FAILED"
)

// String returns the string representation of the simulation state.
func (s SimulationState) String() string {
	return string(s)
}

// Valid reports whether s is one of the known states.
func (s SimulationState) Valid() bool {
	switch s {
	case SimulationStateCompleted, SimulationStateRejected, SimulationStateFailed:
		return true
	}
	return false
}

// HasTrace is true for runs that produced a Gantt chart.
func (s SimulationState) HasTrace() bool {
	return s == SimulationStateCompleted
}

package scheduler

import "github.com/me/mlfq/pkg/model"

// GanttTrace accumulates execution intervals, merging consecutive intervals
// of the same process.
type GanttTrace struct {
	segments []model.Segment
}

// Append records that name ran for duration ticks. Empty intervals are
// dropped.
func (g *GanttTrace) Append(name string, duration int) {
	if duration <= 0 {
		return
	}
	if n := len(g.segments); n > 0 && g.segments[n-1].Name == name {
		g.segments[n-1].Duration += duration
		return
	}
	g.segments = append(g.segments, model.Segment{Name: name, Duration: duration})
}

// Len returns the number of segments recorded so far.
func (g *GanttTrace) Len() int {
	return len(g.segments)
}

// Segments returns a copy of the trace in execution order.
func (g *GanttTrace) Segments() []model.Segment {
	return append([]model.Segment(nil), g.segments...)
}

package scheduler

import "sort"

// ArrivalFeed releases processes into the system in arrival order. Ties keep
// table order. The cursor only moves forward.
type ArrivalFeed struct {
	table  *ProcessTable
	order  []int
	cursor int
}

// NewArrivalFeed orders the table's processes by arrival time.
func NewArrivalFeed(table *ProcessTable) *ArrivalFeed {
	order := make([]int, table.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return table.At(order[a]).ArrivalTime < table.At(order[b]).ArrivalTime
	})
	return &ArrivalFeed{table: table, order: order}
}

// First releases the earliest process regardless of the clock. It is used
// once, to seed level 0 at t=0.
func (f *ArrivalFeed) First() (string, bool) {
	if f.cursor != 0 || len(f.order) == 0 {
		return "", false
	}
	f.cursor++
	return f.table.At(f.order[0]).Name, true
}

// Next releases at most one process whose arrival time is at or before t.
func (f *ArrivalFeed) Next(t int) (string, bool) {
	if f.cursor >= len(f.order) {
		return "", false
	}
	p := f.table.At(f.order[f.cursor])
	if p.ArrivalTime > t {
		return "", false
	}
	f.cursor++
	return p.Name, true
}

// Pending returns how many processes have not arrived yet.
func (f *ArrivalFeed) Pending() int {
	return len(f.order) - f.cursor
}

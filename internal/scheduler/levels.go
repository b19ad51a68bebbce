package scheduler

import "fmt"

// ring is a fixed-capacity FIFO of process names.
type ring struct {
	buf  []string
	head int
	size int
}

func newRing(capacity int) ring {
	return ring{buf: make([]string, capacity)}
}

func (r *ring) push(name string) error {
	if r.size == len(r.buf) {
		return fmt.Errorf("queue full (capacity %d)", len(r.buf))
	}
	r.buf[(r.head+r.size)%len(r.buf)] = name
	r.size++
	return nil
}

func (r *ring) front() (string, bool) {
	if r.size == 0 {
		return "", false
	}
	return r.buf[r.head], true
}

func (r *ring) pop() (string, bool) {
	name, ok := r.front()
	if !ok {
		return "", false
	}
	r.buf[r.head] = ""
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return name, true
}

func (r *ring) items() []string {
	out := make([]string, r.size)
	for i := range out {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// LevelQueues holds one FIFO ready queue per priority level. Level 0 is the
// highest priority. Each queue can hold every process in the table, since a
// process sits in at most one queue at a time.
type LevelQueues struct {
	table   *ProcessTable
	quantum []int
	queues  []ring
}

// NewLevelQueues creates len(quantum) empty levels over table.
func NewLevelQueues(table *ProcessTable, quantum []int) *LevelQueues {
	q := &LevelQueues{
		table:   table,
		quantum: append([]int(nil), quantum...),
		queues:  make([]ring, len(quantum)),
	}
	for i := range q.queues {
		q.queues[i] = newRing(table.Len())
	}
	return q
}

// Levels returns the number of configured levels.
func (q *LevelQueues) Levels() int {
	return len(q.queues)
}

// Quantum returns the slice size granted per dispatch at level.
func (q *LevelQueues) Quantum(level int) int {
	return q.quantum[level]
}

// Enqueue appends name to the tail of level and refreshes its quantum to
// that level's slice. This happens on every admission, first or not.
func (q *LevelQueues) Enqueue(level int, name string) error {
	if level < 0 || level >= len(q.queues) {
		return fmt.Errorf("level %d out of range [0,%d)", level, len(q.queues))
	}
	if err := q.table.ResetQuantum(name, q.quantum[level]); err != nil {
		return err
	}
	return q.queues[level].push(name)
}

// PeekFront returns the process at the head of level without removing it.
func (q *LevelQueues) PeekFront(level int) (string, bool) {
	return q.queues[level].front()
}

// PopFront removes and returns the process at the head of level.
func (q *LevelQueues) PopFront(level int) (string, bool) {
	return q.queues[level].pop()
}

// IsEmpty reports whether level has no ready process.
func (q *LevelQueues) IsEmpty(level int) bool {
	return q.queues[level].size == 0
}

// Len returns the number of processes waiting at level.
func (q *LevelQueues) Len(level int) int {
	return q.queues[level].size
}

// Demote returns the level a process leaves level for after exhausting its
// slice. The last level demotes to itself.
func (q *LevelQueues) Demote(level int) int {
	if level+1 >= len(q.queues) {
		return len(q.queues) - 1
	}
	return level + 1
}

// Snapshot returns the queued names per level, head first.
func (q *LevelQueues) Snapshot() [][]string {
	out := make([][]string, len(q.queues))
	for i := range q.queues {
		out[i] = q.queues[i].items()
	}
	return out
}

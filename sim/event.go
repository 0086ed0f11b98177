package sim

import "math"

// wakeup is what a suspended process receives when it is resumed.
type wakeup struct {
	value any
	err   error
	kill  bool
}

// event is a scheduled resumption of a process, or a callback run on the
// scheduler goroutine when target is nil.
// Events are transient: created by Timeout, ScheduleAfter or by a
// queue/signal resolution, discarded once dispatched.
type event struct {
	due    float64 // virtual time in days
	seq    uint64  // scheduling order, breaks ties between equal due times
	target *Process
	wake   wakeup
	fn     func()
}

// eventQueue is a min-heap ordered by (due, seq).
// Implements heap.Interface.
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) {
	*q = append(*q, x.(*event))
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// validDelay reports whether d may be used as a scheduling delay.
func validDelay(d float64) bool {
	return d >= 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

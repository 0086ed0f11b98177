// Implements the FilterQueue, the blocking pub/sub primitive shared by agents.
// Items are kept in arrival order; getters are kept in registration order.

package sim

import (
	"fmt"
	"strings"
)

// Predicate selects the items a getter is willing to accept.
type Predicate[T any] func(T) bool

// Any accepts every item.
func Any[T any](T) bool { return true }

type getRequest[T any] struct {
	proc *Process
	pred Predicate[T]
}

// FilterQueue is an unbounded, FIFO-biased buffer with predicate-filtered,
// blocking consumption.
//
// Delivery policy:
//   - an item is delivered to at most one getter
//   - a getter receives the earliest-arrived item its predicate accepts
//   - an arriving item goes to the earliest-registered getter that accepts it;
//     a later getter is served first only when every earlier one rejects it
//   - waiting getters are re-checked in registration order on every Put and
//     before every Get or TryGet
//   - a getter whose predicate never matches waits forever
type FilterQueue[T any] struct {
	env     *Environment
	name    string
	items   []T
	getters []*getRequest[T]
	history []T
}

// NewFilterQueue creates an empty queue bound to env. The name is only used
// in logs and errors.
func NewFilterQueue[T any](env *Environment, name string) *FilterQueue[T] {
	if env == nil {
		panic("NewFilterQueue: env must not be nil")
	}
	return &FilterQueue[T]{env: env, name: name}
}

// Name returns the queue name.
func (q *FilterQueue[T]) Name() string { return q.name }

// Len returns the number of buffered items.
func (q *FilterQueue[T]) Len() int { return len(q.items) }

// Pending returns the number of getters waiting on the queue.
func (q *FilterQueue[T]) Pending() int { return len(q.getters) }

// Items returns a snapshot of the buffered items in arrival order.
func (q *FilterQueue[T]) Items() []T {
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// Arrived returns how many items have ever been put into the queue.
func (q *FilterQueue[T]) Arrived() int { return len(q.history) }

// ArrivedSince returns the items put after the first n arrivals, in arrival
// order, whether or not they have since been consumed. Callers keep n as a
// cursor: cursor = q.Arrived() after each read.
func (q *FilterQueue[T]) ArrivedSince(n int) []T {
	if n < 0 {
		n = 0
	}
	if n >= len(q.history) {
		return nil
	}
	out := make([]T, len(q.history)-n)
	copy(out, q.history[n:])
	return out
}

// Put appends item and hands buffered items to pending getters. Resolved
// getters are resumed at the current virtual time, in registration order.
func (q *FilterQueue[T]) Put(item T) {
	q.items = append(q.items, item)
	q.history = append(q.history, item)
	q.serveGetters()
}

// Get removes and returns the earliest-arrived item accepted by pred (nil
// means Any). If no buffered item matches, p is suspended until one arrives.
// Getters already waiting are re-checked first, so a buffered item whose
// acceptability changed since its Put still goes to the earliest-registered
// getter that accepts it. A panicking predicate yields a *PredicateError.
func (q *FilterQueue[T]) Get(p *Process, pred Predicate[T]) (T, error) {
	var zero T
	if pred == nil {
		pred = Any[T]
	}
	p.mustBeActive("FilterQueue.Get")
	q.serveGetters()
	idx, err := q.match(pred)
	if err != nil {
		return zero, err
	}
	if idx >= 0 {
		return q.removeAt(idx), nil
	}
	q.getters = append(q.getters, &getRequest[T]{proc: p, pred: pred})
	w := p.suspend(StateWaitingQueue)
	if w.err != nil {
		return zero, w.err
	}
	item, _ := w.value.(T)
	return item, nil
}

// TryGet is the non-suspending form of Get: it removes and returns the
// earliest-arrived item accepted by pred, or reports false. Waiting getters
// are served first.
func (q *FilterQueue[T]) TryGet(pred Predicate[T]) (T, bool, error) {
	var zero T
	if pred == nil {
		pred = Any[T]
	}
	q.serveGetters()
	idx, err := q.match(pred)
	if err != nil || idx < 0 {
		return zero, false, err
	}
	return q.removeAt(idx), true, nil
}

// Contains reports whether a buffered item is accepted by pred.
func (q *FilterQueue[T]) Contains(pred Predicate[T]) (bool, error) {
	if pred == nil {
		pred = Any[T]
	}
	idx, err := q.match(pred)
	return idx >= 0, err
}

func (q *FilterQueue[T]) serveGetters() {
	remaining := q.getters[:0]
	for _, g := range q.getters {
		if len(q.items) == 0 {
			remaining = append(remaining, g)
			continue
		}
		idx, err := q.match(g.pred)
		switch {
		case err != nil:
			_ = q.env.schedule(0, g.proc, wakeup{err: err})
		case idx >= 0:
			_ = q.env.schedule(0, g.proc, wakeup{value: q.removeAt(idx)})
		default:
			remaining = append(remaining, g)
		}
	}
	for i := len(remaining); i < len(q.getters); i++ {
		q.getters[i] = nil
	}
	q.getters = remaining
}

// match returns the index of the earliest item accepted by pred, or -1.
func (q *FilterQueue[T]) match(pred Predicate[T]) (idx int, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx, err = -1, &PredicateError{Queue: q.name, Cause: r}
		}
	}()
	for i, item := range q.items {
		if pred(item) {
			return i, nil
		}
	}
	return -1, nil
}

func (q *FilterQueue[T]) removeAt(i int) T {
	item := q.items[i]
	var zero T
	copy(q.items[i:], q.items[i+1:])
	q.items[len(q.items)-1] = zero
	q.items = q.items[:len(q.items)-1]
	return item
}

func (q *FilterQueue[T]) String() string {
	var sb strings.Builder
	sb.WriteString(q.name)
	sb.WriteString("[")
	for i, val := range q.items {
		sb.WriteString(fmt.Sprint(val))
		if i < len(q.items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

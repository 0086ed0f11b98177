package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Environment owns the virtual clock, the pending event queue and every
// process spawned against it. It is the scheduler context handed to all
// simulated entities.
//
// Thread-safety: NOT thread-safe. Drive it from a single goroutine; process
// bodies are only ever run while the driving goroutine is parked.
type Environment struct {
	now      float64
	nextSeq  uint64
	nextPID  int
	events   eventQueue
	yield    chan struct{}
	active   *Process
	procs    []*Process
	failures []ProcessFailure
	closed   bool
}

// NewEnvironment creates an Environment with the clock at day 0.
func NewEnvironment() *Environment {
	env := &Environment{
		events: make(eventQueue, 0),
		yield:  make(chan struct{}),
	}
	heap.Init(&env.events)
	return env
}

// Now returns the current virtual time in days.
func (env *Environment) Now() float64 {
	return env.now
}

// Active returns the process currently executing, or nil when the scheduler
// itself is running.
func (env *Environment) Active() *Process {
	return env.active
}

// PendingEvents returns the number of scheduled, not yet dispatched events.
func (env *Environment) PendingEvents() int {
	return len(env.events)
}

// Failures returns the processes that terminated with an error, in the order
// they failed.
func (env *Environment) Failures() []ProcessFailure {
	return env.failures
}

// Processes returns every process spawned so far, in spawn order.
func (env *Environment) Processes() []*Process {
	return env.procs
}

// ScheduleAfter runs fn on the scheduler delay days from now, e.g. to Put
// into a queue or fire a Signal at a given time. Processes never resume
// through it: a process sleeps with Process.Timeout and is woken only by
// what it waits on. Events sharing a due time are dispatched in scheduling
// order. fn must not block.
func (env *Environment) ScheduleAfter(delay float64, fn func()) error {
	if fn == nil {
		panic("ScheduleAfter: fn must not be nil")
	}
	return env.push(delay, &event{fn: fn})
}

func (env *Environment) schedule(delay float64, target *Process, w wakeup) error {
	return env.push(delay, &event{target: target, wake: w})
}

func (env *Environment) push(delay float64, ev *event) error {
	if !validDelay(delay) {
		return fmt.Errorf("%w: %v", ErrInvalidDelay, delay)
	}
	env.nextSeq++
	ev.due = env.now + delay
	ev.seq = env.nextSeq
	heap.Push(&env.events, ev)
	return nil
}

// Run dispatches events until none remain. Processes that are blocked forever
// simply stay parked; that is a normal end of run.
func (env *Environment) Run() {
	for len(env.events) > 0 {
		env.dispatch(heap.Pop(&env.events).(*event))
	}
	logrus.Debugf("[day %10.4f] event queue drained", env.now)
}

// RunUntil dispatches every event due at or before horizon, then advances the
// clock to horizon. Events due later stay queued, so a subsequent RunUntil
// continues where this one stopped.
func (env *Environment) RunUntil(horizon float64) error {
	if math.IsNaN(horizon) || horizon < env.now {
		return fmt.Errorf("%w: horizon %v is before current time %v", ErrInvalidDelay, horizon, env.now)
	}
	for len(env.events) > 0 && env.events[0].due <= horizon {
		env.dispatch(heap.Pop(&env.events).(*event))
	}
	if !math.IsInf(horizon, 1) {
		env.now = horizon
	}
	logrus.Debugf("[day %10.4f] horizon reached, %d events pending", env.now, len(env.events))
	return nil
}

func (env *Environment) dispatch(ev *event) {
	env.now = ev.due
	if ev.fn != nil {
		logrus.Tracef("[day %10.4f] callback", env.now)
		ev.fn()
		return
	}
	if ev.target.state == StateTerminated {
		return
	}
	logrus.Tracef("[day %10.4f] resume %s", env.now, ev.target)
	env.step(ev.target, ev.wake)
}

// step hands control to p and blocks until p suspends or terminates.
func (env *Environment) step(p *Process, w wakeup) {
	prev := env.active
	env.active = p
	p.state = StateRunning
	p.resume <- w
	<-env.yield
	env.active = prev
}

// Spawn registers a new process and runs it immediately until its first
// suspension point.
func (env *Environment) Spawn(name string, body ProcessBody) *Process {
	if body == nil {
		panic("Spawn: body must not be nil")
	}
	if env.closed {
		panic("Spawn: environment is closed")
	}
	env.nextPID++
	p := &Process{
		id:     env.nextPID,
		name:   name,
		env:    env,
		state:  StateRunnable,
		resume: make(chan wakeup),
	}
	p.done = NewSignal(env)
	env.procs = append(env.procs, p)
	go p.run(body)
	env.step(p, wakeup{})
	return p
}

// Close unwinds every parked process and drops pending events. The
// Environment cannot be used afterwards.
func (env *Environment) Close() {
	if env.closed {
		return
	}
	if env.active != nil {
		panic("Close: called from inside a process")
	}
	env.closed = true
	env.events = env.events[:0]
	for _, p := range env.procs {
		if p.state == StateTerminated {
			continue
		}
		p.killed = true
		env.step(p, wakeup{kill: true})
	}
}

func (env *Environment) recordFailure(p *Process, err error) {
	env.failures = append(env.failures, ProcessFailure{
		ProcessID: p.id,
		Name:      p.name,
		Clock:     env.now,
		Err:       err,
	})
	logrus.Warnf("[day %10.4f] process %s terminated: %v", env.now, p, err)
}

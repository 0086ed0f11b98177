package sim

import (
	"fmt"
	"runtime"
)

// ProcessState is the scheduler's view of a process.
type ProcessState int

const (
	StateRunnable ProcessState = iota
	StateRunning
	StateWaitingTimeout
	StateWaitingQueue
	StateWaitingSignal
	StateTerminated
)

var processStateNames = map[ProcessState]string{
	StateRunnable:       "runnable",
	StateRunning:        "running",
	StateWaitingTimeout: "waiting-on-timeout",
	StateWaitingQueue:   "waiting-on-queue",
	StateWaitingSignal:  "waiting-on-signal",
	StateTerminated:     "terminated",
}

func (s ProcessState) String() string {
	if name, ok := processStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ProcessState(%d)", int(s))
}

// ProcessBody is the code of one agent activity. Returning a non-nil error
// terminates the process and records a ProcessFailure; other processes are
// unaffected.
type ProcessBody func(p *Process) error

// Process is a suspendable unit of execution. A process may only call its
// suspension methods (Timeout, FilterQueue.Get, Signal.Wait) from its own
// body.
type Process struct {
	id     int
	name   string
	env    *Environment
	state  ProcessState
	resume chan wakeup
	err    error
	killed bool
	done   *Signal
}

func (p *Process) String() string {
	return fmt.Sprintf("%s#%d", p.name, p.id)
}

// ID returns the process identifier, unique within its Environment.
func (p *Process) ID() int { return p.id }

// Name returns the name the process was spawned with.
func (p *Process) Name() string { return p.name }

// State returns the current scheduler state.
func (p *Process) State() ProcessState { return p.state }

// Err returns the error the process terminated with, if any.
func (p *Process) Err() error { return p.err }

// Env returns the Environment the process runs in.
func (p *Process) Env() *Environment { return p.env }

// Now is shorthand for p.Env().Now().
func (p *Process) Now() float64 { return p.env.now }

// Done returns a Signal fired when the process terminates. Its value is the
// process error (nil on success).
func (p *Process) Done() *Signal { return p.done }

// Timeout suspends the process for delay days.
func (p *Process) Timeout(delay float64) error {
	p.mustBeActive("Timeout")
	if err := p.env.schedule(delay, p, wakeup{}); err != nil {
		return err
	}
	p.suspend(StateWaitingTimeout)
	return nil
}

func (p *Process) mustBeActive(op string) {
	if p.env.active != p {
		panic(fmt.Sprintf("%s: process %s is not running", op, p))
	}
}

// suspend parks the calling process goroutine until the scheduler resumes it.
func (p *Process) suspend(state ProcessState) wakeup {
	p.state = state
	p.env.yield <- struct{}{}
	w := <-p.resume
	if w.kill {
		runtime.Goexit()
	}
	return w
}

// run is the goroutine entry point of a process.
func (p *Process) run(body ProcessBody) {
	defer func() {
		if r := recover(); r != nil {
			p.err = fmt.Errorf("%w: %v", ErrProcessPanic, r)
		}
		if p.err != nil && !p.killed {
			p.env.recordFailure(p, p.err)
		}
		p.state = StateTerminated
		if !p.killed {
			p.done.Succeed(p.err)
		}
		p.env.yield <- struct{}{}
	}()
	w := <-p.resume
	if w.kill {
		runtime.Goexit()
	}
	p.err = body(p)
}

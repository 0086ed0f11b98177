package sim

// Signal is a one-shot condition processes can wait on. Once fired it stays
// fired; waiters registered before firing are resumed in registration order.
type Signal struct {
	env     *Environment
	fired   bool
	firedAt float64
	value   any
	waiters []*Process
}

// NewSignal creates an unfired Signal bound to env.
func NewSignal(env *Environment) *Signal {
	if env == nil {
		panic("NewSignal: env must not be nil")
	}
	return &Signal{env: env}
}

// Fired reports whether Succeed has been called.
func (s *Signal) Fired() bool { return s.fired }

// FiredAt returns the virtual time the signal fired at (0 if unfired).
func (s *Signal) FiredAt() float64 { return s.firedAt }

// Value returns the value passed to Succeed.
func (s *Signal) Value() any { return s.value }

// Succeed fires the signal and schedules every waiter for resumption at the
// current time. Returns false if the signal had already fired.
func (s *Signal) Succeed(value any) bool {
	if s.fired {
		return false
	}
	s.fired = true
	s.firedAt = s.env.now
	s.value = value
	for _, p := range s.waiters {
		// zero delay is always valid
		_ = s.env.schedule(0, p, wakeup{value: value})
	}
	s.waiters = nil
	return true
}

// Wait suspends p until the signal fires and returns the fired value. Returns
// immediately if the signal already fired.
func (s *Signal) Wait(p *Process) any {
	if s.fired {
		return s.value
	}
	p.mustBeActive("Signal.Wait")
	s.waiters = append(s.waiters, p)
	w := p.suspend(StateWaitingSignal)
	return w.value
}

package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports a non-positive rate, mean or period, or a
	// probability outside [0, 1]. Returned by constructors.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidDelay reports a negative or non-finite scheduling delay.
	ErrInvalidDelay = errors.New("invalid delay")

	// ErrProcessPanic wraps a panic recovered from a process body.
	ErrProcessPanic = errors.New("process panicked")
)

// InvalidParameterf returns an error wrapping ErrInvalidParameter.
func InvalidParameterf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// PredicateError is returned to a getter whose predicate panicked while being
// evaluated. The queue is left untouched.
type PredicateError struct {
	Queue string
	Cause any
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate failed on queue %q: %v", e.Queue, e.Cause)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PredicateError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// ProcessFailure records a process that terminated with an error.
type ProcessFailure struct {
	ProcessID int
	Name      string
	Clock     float64
	Err       error
}

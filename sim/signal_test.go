package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal_WaitersResumeInRegistrationOrder(t *testing.T) {
	// GIVEN two processes waiting on a signal
	env := NewEnvironment()
	defer env.Close()
	s := NewSignal(env)
	var order []string
	var values []any
	for _, name := range []string{"first", "second"} {
		env.Spawn(name, func(p *Process) error {
			values = append(values, s.Wait(p))
			order = append(order, p.Name())
			return nil
		})
	}

	// WHEN it fires at day 2
	env.Spawn("firer", func(p *Process) error {
		if err := p.Timeout(2); err != nil {
			return err
		}
		assert.True(t, s.Succeed("go"))
		return nil
	})
	env.Run()

	// THEN both resume in order with the fired value
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []any{"go", "go"}, values)
	assert.Equal(t, 2.0, s.FiredAt())
}

func TestSignal_FiresOnce(t *testing.T) {
	env := NewEnvironment()
	defer env.Close()
	s := NewSignal(env)

	assert.False(t, s.Fired())
	assert.True(t, s.Succeed(1))
	assert.False(t, s.Succeed(2))
	assert.Equal(t, 1, s.Value())

	// a late waiter returns immediately
	var got any
	env.Spawn("late", func(p *Process) error {
		got = s.Wait(p)
		return nil
	})
	assert.Equal(t, 1, got)
}

package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isEven(n int) bool { return n%2 == 0 }

func TestFilterQueue_GetMatchingItemAlreadyBuffered(t *testing.T) {
	// GIVEN a queue holding 1, 2, 3, 4
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "q")
	for i := 1; i <= 4; i++ {
		q.Put(i)
	}

	// WHEN a getter asks for an even number
	var got int
	env.Spawn("getter", func(p *Process) error {
		var err error
		got, err = q.Get(p, isEven)
		return err
	})

	// THEN it receives the earliest matching item without waiting
	assert.Equal(t, 2, got)
	assert.Equal(t, []int{1, 3, 4}, q.Items())
	assert.Equal(t, 0.0, env.Now())
}

func TestFilterQueue_FIFOAmongWaitingGetters(t *testing.T) {
	// GIVEN two getters with accept-all predicates registered a then b
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[string](env, "q")
	got := map[string]string{}
	for _, name := range []string{"a", "b"} {
		env.Spawn(name, func(p *Process) error {
			item, err := q.Get(p, nil)
			got[p.Name()] = item
			return err
		})
	}

	// WHEN x then y are put
	env.Spawn("producer", func(p *Process) error {
		q.Put("x")
		q.Put("y")
		return nil
	})
	env.Run()

	// THEN a gets x and b gets y
	assert.Equal(t, map[string]string{"a": "x", "b": "y"}, got)
	assert.Zero(t, q.Len())
}

func TestFilterQueue_SelectiveGetterIsBypassed(t *testing.T) {
	// GIVEN an even-only getter registered before an accept-all getter
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "q")
	got := map[string]int{}
	env.Spawn("even", func(p *Process) error {
		item, err := q.Get(p, isEven)
		got[p.Name()] = item
		return err
	})
	env.Spawn("any", func(p *Process) error {
		item, err := q.Get(p, nil)
		got[p.Name()] = item
		return err
	})

	// WHEN an odd item arrives
	q.Put(3)
	env.Run()

	// THEN the later accept-all getter takes it and the even getter keeps waiting
	assert.Equal(t, map[string]int{"any": 3}, got)
	assert.Equal(t, 1, q.Pending())

	// WHEN an even item arrives
	q.Put(8)
	env.Run()

	// THEN the even getter is served
	assert.Equal(t, 8, got["even"])
	assert.Zero(t, q.Pending())
}

type flag struct {
	ready bool
}

func isReady(f *flag) bool { return f.ready }

func TestFilterQueue_WaitingGetterServedBeforeLaterGet(t *testing.T) {
	// GIVEN a getter waiting for a ready flag over one buffered, not-ready flag
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[*flag](env, "flags")
	f := &flag{}
	q.Put(f)
	got := map[string]bool{}
	env.Spawn("first", func(p *Process) error {
		_, err := q.Get(p, isReady)
		got[p.Name()] = err == nil
		return err
	})
	require.Equal(t, 1, q.Pending())

	// WHEN the buffered flag becomes ready without a Put, and a second getter
	// asks for a ready flag
	f.ready = true
	env.Spawn("second", func(p *Process) error {
		_, err := q.Get(p, isReady)
		got[p.Name()] = err == nil
		return err
	})
	env.Run()

	// THEN the earlier-registered getter takes it and the later one waits
	assert.Equal(t, map[string]bool{"first": true}, got)
	assert.Equal(t, 1, q.Pending())
	assert.Zero(t, q.Len())
}

func TestFilterQueue_TryGetServesWaitingGetterFirst(t *testing.T) {
	// GIVEN a waiting getter and a buffered flag that has just become ready
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[*flag](env, "flags")
	f := &flag{}
	q.Put(f)
	var got *flag
	env.Spawn("waiter", func(p *Process) error {
		var err error
		got, err = q.Get(p, isReady)
		return err
	})
	f.ready = true

	// WHEN TryGet asks for the same flag
	_, ok, err := q.TryGet(isReady)
	env.Run()

	// THEN the waiting getter wins
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Same(t, f, got)
}

func TestFilterQueue_ResumptionHappensAtPutTime(t *testing.T) {
	// GIVEN a getter waiting on an empty queue
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "q")
	var at float64
	env.Spawn("getter", func(p *Process) error {
		_, err := q.Get(p, nil)
		at = p.Now()
		return err
	})

	// WHEN an item is put at day 7
	env.Spawn("producer", func(p *Process) error {
		if err := p.Timeout(7); err != nil {
			return err
		}
		q.Put(1)
		return nil
	})
	env.Run()

	// THEN the getter resumes at day 7
	assert.Equal(t, 7.0, at)
}

func TestFilterQueue_UnmatchedGetterStarves(t *testing.T) {
	// GIVEN a getter that only accepts negative numbers
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "q")
	p := env.Spawn("picky", func(p *Process) error {
		_, err := q.Get(p, func(n int) bool { return n < 0 })
		return err
	})

	// WHEN only positives arrive
	for i := 1; i <= 5; i++ {
		q.Put(i)
	}
	env.Run()

	// THEN it waits forever and the items stay buffered
	assert.Equal(t, StateWaitingQueue, p.State())
	assert.Equal(t, 5, q.Len())
}

func TestFilterQueue_PanickingPredicate(t *testing.T) {
	// GIVEN a buffered queue and a predicate that panics
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "fragile")
	q.Put(1)
	q.Put(2)
	bad := func(int) bool { panic(fmt.Errorf("cannot decide")) }

	// WHEN the predicate is evaluated by Get
	var getErr error
	env.Spawn("getter", func(p *Process) error {
		_, getErr = q.Get(p, bad)
		return nil
	})

	// THEN the getter sees a PredicateError and the queue is unchanged
	var perr *PredicateError
	require.True(t, errors.As(getErr, &perr))
	assert.Equal(t, "fragile", perr.Queue)
	assert.EqualError(t, errors.Unwrap(getErr), "cannot decide")
	assert.Equal(t, []int{1, 2}, q.Items())

	// AND the non-suspending forms report it too
	_, ok, err := q.TryGet(bad)
	assert.False(t, ok)
	assert.True(t, errors.As(err, &perr))
	_, err = q.Contains(bad)
	assert.True(t, errors.As(err, &perr))
}

func TestFilterQueue_PanickingPredicateWhileWaiting(t *testing.T) {
	// GIVEN a waiting getter whose predicate panics on evaluation
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "q")
	var getErr error
	env.Spawn("getter", func(p *Process) error {
		_, getErr = q.Get(p, func(n int) bool {
			if n == 13 {
				panic("unlucky")
			}
			return false
		})
		return nil
	})

	// WHEN the triggering item arrives
	q.Put(13)
	env.Run()

	// THEN the getter is resumed with the error and the item stays buffered
	var perr *PredicateError
	assert.True(t, errors.As(getErr, &perr))
	assert.Equal(t, []int{13}, q.Items())
	assert.Zero(t, q.Pending())
}

func TestFilterQueue_TryGetAndContains(t *testing.T) {
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "q")
	q.Put(1)
	q.Put(4)

	ok, err := q.Contains(isEven)
	require.NoError(t, err)
	assert.True(t, ok)

	item, ok, err := q.TryGet(isEven)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, item)

	_, ok, err = q.TryGet(isEven)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = q.Contains(nil)
	assert.True(t, ok)
}

func TestFilterQueue_ArrivedSince(t *testing.T) {
	// GIVEN three arrivals, one of which was consumed
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[string](env, "patches")
	q.Put("p1")
	q.Put("p2")
	_, _, _ = q.TryGet(nil)
	q.Put("p3")

	// THEN the history keeps every arrival regardless of consumption
	assert.Equal(t, 3, q.Arrived())
	assert.Equal(t, []string{"p1", "p2", "p3"}, q.ArrivedSince(0))
	assert.Equal(t, []string{"p3"}, q.ArrivedSince(2))
	assert.Nil(t, q.ArrivedSince(3))
	assert.Nil(t, q.ArrivedSince(10))
	assert.Equal(t, []string{"p1", "p2", "p3"}, q.ArrivedSince(-1))
}

func TestFilterQueue_String(t *testing.T) {
	env := NewEnvironment()
	defer env.Close()
	q := NewFilterQueue[int](env, "q")
	q.Put(1)
	q.Put(2)
	assert.Equal(t, "q[1 2]", q.String())
}

package cyber

import (
	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// Context is the shared simulation context handed to every entity.
type Context struct {
	Env       *sim.Environment
	RNG       *sim.PartitionedRNG
	Journal   *trace.Journal // nil disables journaling
	Lifecycle *Lifecycle     // default lifecycle for new vulnerabilities
}

// NewContext bundles the kernel collaborators with the default lifecycle.
func NewContext(env *sim.Environment, rng *sim.PartitionedRNG, journal *trace.Journal) *Context {
	if env == nil {
		panic("NewContext: env must not be nil")
	}
	if rng == nil {
		panic("NewContext: rng must not be nil")
	}
	return &Context{
		Env:       env,
		RNG:       rng,
		Journal:   journal,
		Lifecycle: DefaultLifecycle(),
	}
}

// Now returns the current virtual time.
func (c *Context) Now() float64 {
	return c.Env.Now()
}

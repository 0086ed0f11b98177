package cyber

import (
	"github.com/vuln-sim/vuln-sim/sim"
)

// Vulnerability state names.
const (
	StateUndiscovered = "UNDISCOVERED"
	StateIdentified   = "IDENTIFIED"
	StatePatched      = "PATCHED"
)

// Default lifecycle parameters, in days.
const (
	DefaultUndiscoveredMean = 90.0
	DefaultIdentifiedMean   = 30.0
	DefaultPatchAddsMean    = 0.25
)

// VulnerabilityState is one step of the lifecycle. Non-terminal states carry
// the sampler for their sojourn time.
type VulnerabilityState struct {
	Name    string
	Sojourn sim.DelaySampler // nil on the terminal state
	ZeroDay bool
	Patched bool
}

// Lifecycle is the ordered list of states every vulnerability walks through,
// plus the distribution of side-effect vulnerabilities introduced by its patch.
type Lifecycle struct {
	States    []VulnerabilityState
	PatchAdds sim.CountSampler
	Affects   *sim.Categorical // draw over ItemTypes when affects is unspecified
}

// NewLifecycle builds the UNDISCOVERED -> IDENTIFIED -> PATCHED lifecycle
// with exponential sojourn times. Non-positive means are rejected.
func NewLifecycle(undiscoveredMean, identifiedMean, patchAddsMean float64) (*Lifecycle, error) {
	undiscovered, err := sim.NewExponentialDelay(undiscoveredMean)
	if err != nil {
		return nil, err
	}
	identified, err := sim.NewExponentialDelay(identifiedMean)
	if err != nil {
		return nil, err
	}
	adds, err := sim.NewPoissonCount(patchAddsMean)
	if err != nil {
		return nil, err
	}
	return NewLifecycleFromSamplers(undiscovered, identified, adds)
}

// NewLifecycleFromSamplers builds the three-state lifecycle around arbitrary
// samplers, e.g. fixed delays for deterministic runs.
func NewLifecycleFromSamplers(undiscovered, identified sim.DelaySampler, adds sim.CountSampler) (*Lifecycle, error) {
	if undiscovered == nil || identified == nil {
		return nil, sim.InvalidParameterf("non-terminal states need a sojourn sampler")
	}
	if adds == nil {
		adds = sim.FixedCount(0)
	}
	affects, err := sim.NewCategorical(DefaultAffectsWeights)
	if err != nil {
		return nil, err
	}
	return &Lifecycle{
		States: []VulnerabilityState{
			{Name: StateUndiscovered, Sojourn: undiscovered, ZeroDay: true},
			{Name: StateIdentified, Sojourn: identified},
			{Name: StatePatched, Patched: true},
		},
		PatchAdds: adds,
		Affects:   affects,
	}, nil
}

// DefaultLifecycle returns the lifecycle with means 90 and 30 days and 0.25
// side-effect vulnerabilities per patch.
func DefaultLifecycle() *Lifecycle {
	lc, err := NewLifecycle(DefaultUndiscoveredMean, DefaultIdentifiedMean, DefaultPatchAddsMean)
	if err != nil {
		panic(err) // constants are valid
	}
	return lc
}

// Terminal returns the index of the terminal state.
func (lc *Lifecycle) Terminal() int {
	return len(lc.States) - 1
}

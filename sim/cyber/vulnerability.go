package cyber

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// VulnerabilityOptions configures a new Vulnerability. Zero values select
// the defaults.
type VulnerabilityOptions struct {
	// Name defaults to VUL%04d numbered by the arrival count of PublishSelfTo,
	// or VULXXXX without one.
	Name string
	// Affects defaults to a single type drawn with DefaultAffectsWeights.
	Affects ItemTypeSet
	// PublishPatchTo receives the patch built on reaching PATCHED. May be nil.
	PublishPatchTo *sim.FilterQueue[*Patch]
	// PublishSelfTo receives the vulnerability at creation. May be nil.
	PublishSelfTo *sim.FilterQueue[*Vulnerability]
	// Lifecycle defaults to the Context lifecycle.
	Lifecycle *Lifecycle
}

// Vulnerability is a system weakness evolving from UNDISCOVERED to PATCHED.
// Its state index only ever increases.
type Vulnerability struct {
	ctx            *Context
	name           string
	stateID        int
	affects        ItemTypeSet
	lifecycle      *Lifecycle
	publishPatchTo *sim.FilterQueue[*Patch]
	publishSelfTo  *sim.FilterQueue[*Vulnerability]
	detection      *sim.Signal
	patch          *Patch
	createdAt      float64
	evolving       *sim.Process
}

// NewVulnerability creates a vulnerability, starts its evolution process and
// publishes it to opts.PublishSelfTo.
func NewVulnerability(ctx *Context, opts VulnerabilityOptions) *Vulnerability {
	lc := opts.Lifecycle
	if lc == nil {
		lc = ctx.Lifecycle
	}
	v := &Vulnerability{
		ctx:            ctx,
		name:           opts.Name,
		affects:        opts.Affects,
		lifecycle:      lc,
		publishPatchTo: opts.PublishPatchTo,
		publishSelfTo:  opts.PublishSelfTo,
		detection:      sim.NewSignal(ctx.Env),
		createdAt:      ctx.Now(),
	}
	if v.name == "" {
		if v.publishSelfTo != nil {
			v.name = fmt.Sprintf("VUL%04d", v.publishSelfTo.Arrived()+1)
		} else {
			v.name = "VULXXXX"
		}
	}
	if v.affects.Empty() {
		rng := ctx.RNG.ForSubsystem(sim.SubsystemVulnerabilities)
		v.affects = NewItemTypeSet(ItemTypes[lc.Affects.Sample(rng)])
	}

	v.evolving = ctx.Env.Spawn("evolve-"+v.name, v.evolve)

	if v.publishSelfTo != nil {
		v.publishSelfTo.Put(v)
	}
	return v
}

func (v *Vulnerability) String() string {
	return fmt.Sprintf("<Vulnerability: %s [%s]>", v.name, v.State())
}

// Name returns the vulnerability name.
func (v *Vulnerability) Name() string { return v.name }

// StateIndex returns the position in the lifecycle.
func (v *Vulnerability) StateIndex() int { return v.stateID }

// State returns the current state name.
func (v *Vulnerability) State() string { return v.lifecycle.States[v.stateID].Name }

// ZeroDay reports whether the vulnerability is still unknown to defenders.
func (v *Vulnerability) ZeroDay() bool { return v.lifecycle.States[v.stateID].ZeroDay }

// Patched reports whether the terminal state has been reached.
func (v *Vulnerability) Patched() bool { return v.lifecycle.States[v.stateID].Patched }

// Affects returns the item types this vulnerability applies to.
func (v *Vulnerability) Affects() ItemTypeSet { return v.affects }

// CreatedAt returns the virtual time of creation.
func (v *Vulnerability) CreatedAt() float64 { return v.createdAt }

// Patch returns the patch built on reaching PATCHED, or nil before that.
func (v *Vulnerability) Patch() *Patch { return v.patch }

// Evolution returns the process driving the state machine.
func (v *Vulnerability) Evolution() *sim.Process { return v.evolving }

// Detection returns the signal fired when an administrator identifies the
// vulnerability from an alarm. Processes may Wait on it.
func (v *Vulnerability) Detection() *sim.Signal { return v.detection }

// Detected reports whether the detection signal fired.
func (v *Vulnerability) Detected() bool { return v.detection.Fired() }

// Detect fires the detection signal once; it returns false if already detected.
// It does not move the state machine.
func (v *Vulnerability) Detect() bool {
	return v.detection.Succeed(v.ctx.Now())
}

// evolve walks the lifecycle: sleep for the sampled sojourn of the current
// state, then advance. Landing on the terminal state builds the patch.
func (v *Vulnerability) evolve(p *sim.Process) error {
	rng := v.ctx.RNG.ForSubsystem(sim.SubsystemVulnerabilities)
	for !v.Patched() {
		state := v.lifecycle.States[v.stateID]
		if err := p.Timeout(state.Sojourn.Sample(rng)); err != nil {
			return fmt.Errorf("%s sojourn in %s: %w", v.name, state.Name, err)
		}
		v.stateID++
		next := v.lifecycle.States[v.stateID]
		logrus.Debugf("[day %10.4f] %s: %s -> %s", p.Now(), v.name, state.Name, next.Name)
		v.ctx.Journal.RecordTransition(trace.TransitionRecord{
			Vulnerability: v.name,
			Clock:         p.Now(),
			From:          state.Name,
			To:            next.Name,
			CreatedAt:     v.createdAt,
		})
		if v.stateID == v.lifecycle.Terminal() {
			v.patch = newPatch(v)
			if v.publishPatchTo != nil {
				v.publishPatchTo.Put(v.patch)
			}
		}
	}
	return nil
}

// IsZeroDay is a FilterQueue predicate selecting vulnerabilities still in a
// zero-day state.
func IsZeroDay(v *Vulnerability) bool { return v.ZeroDay() }

// IsPatched is a FilterQueue predicate selecting patched vulnerabilities.
func IsPatched(v *Vulnerability) bool { return v.Patched() }

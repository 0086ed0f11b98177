package cyber

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// Patch remediates vulnerabilities and may introduce new ones. Immutable
// after construction.
type Patch struct {
	name      string
	removes   []*Vulnerability
	adds      []*Vulnerability
	createdAt float64
}

// newPatch builds the single patch for v. The number of side-effect
// vulnerabilities is drawn once here; each inherits v's affects, lifecycle
// and publish targets.
func newPatch(v *Vulnerability) *Patch {
	ctx := v.ctx
	rng := ctx.RNG.ForSubsystem(sim.SubsystemVulnerabilities)
	n := v.lifecycle.PatchAdds.Sample(rng)

	p := &Patch{
		name:      "PATCH-" + v.name,
		removes:   []*Vulnerability{v},
		createdAt: ctx.Now(),
	}
	for i := 0; i < n; i++ {
		p.adds = append(p.adds, NewVulnerability(ctx, VulnerabilityOptions{
			Affects:        v.affects,
			PublishPatchTo: v.publishPatchTo,
			PublishSelfTo:  v.publishSelfTo,
			Lifecycle:      v.lifecycle,
		}))
	}
	logrus.Debugf("[day %10.4f] %s", ctx.Now(), p)
	ctx.Journal.RecordPublished(trace.PatchRecord{
		Patch:   p.name,
		Clock:   p.createdAt,
		Removes: names(p.removes),
		Adds:    names(p.adds),
	})
	return p
}

func (p *Patch) String() string {
	return fmt.Sprintf("<Patch for %s>", strings.Join(names(p.removes), ", "))
}

// Name returns the patch name.
func (p *Patch) Name() string { return p.name }

// CreatedAt returns the virtual time the patch was built.
func (p *Patch) CreatedAt() float64 { return p.createdAt }

// Removes returns a copy of the remediated vulnerabilities.
func (p *Patch) Removes() []*Vulnerability {
	return append([]*Vulnerability(nil), p.removes...)
}

// Adds returns a copy of the vulnerabilities the patch introduces.
func (p *Patch) Adds() []*Vulnerability {
	return append([]*Vulnerability(nil), p.adds...)
}

func names(vs []*Vulnerability) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.name
	}
	return out
}

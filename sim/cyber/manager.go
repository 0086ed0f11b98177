package cyber

import (
	"github.com/vuln-sim/vuln-sim/sim"
)

// VulnerabilityManager owns the shared vulnerabilities and patches queues
// and seeds the initial vulnerabilities.
type VulnerabilityManager struct {
	ctx             *Context
	vulnerabilities *sim.FilterQueue[*Vulnerability]
	patches         *sim.FilterQueue[*Patch]
}

// NewVulnerabilityManager creates the shared queues and n vulnerabilities
// publishing into them.
func NewVulnerabilityManager(ctx *Context, n int) (*VulnerabilityManager, error) {
	if n < 0 {
		return nil, sim.InvalidParameterf("number of vulnerabilities must be non-negative, got %d", n)
	}
	m := &VulnerabilityManager{
		ctx:             ctx,
		vulnerabilities: sim.NewFilterQueue[*Vulnerability](ctx.Env, "vulnerabilities"),
		patches:         sim.NewFilterQueue[*Patch](ctx.Env, "patches"),
	}
	for i := 0; i < n; i++ {
		m.New(0)
	}
	return m, nil
}

// New creates a vulnerability publishing into the manager's queues. A zero
// affects set selects the default random draw.
func (m *VulnerabilityManager) New(affects ItemTypeSet) *Vulnerability {
	return NewVulnerability(m.ctx, VulnerabilityOptions{
		Affects:        affects,
		PublishPatchTo: m.patches,
		PublishSelfTo:  m.vulnerabilities,
	})
}

// Vulnerabilities returns the shared vulnerabilities queue.
func (m *VulnerabilityManager) Vulnerabilities() *sim.FilterQueue[*Vulnerability] {
	return m.vulnerabilities
}

// Patches returns the shared patches queue.
func (m *VulnerabilityManager) Patches() *sim.FilterQueue[*Patch] {
	return m.patches
}

// All returns every vulnerability ever published, in creation order.
func (m *VulnerabilityManager) All() []*Vulnerability {
	return m.vulnerabilities.ArrivedSince(0)
}

// CountByState returns how many published vulnerabilities are in each state.
func (m *VulnerabilityManager) CountByState() map[string]int {
	counts := make(map[string]int)
	for _, v := range m.All() {
		counts[v.State()]++
	}
	return counts
}

// ZeroDays returns the published vulnerabilities still in a zero-day state.
func (m *VulnerabilityManager) ZeroDays() []*Vulnerability {
	var out []*Vulnerability
	for _, v := range m.All() {
		if IsZeroDay(v) {
			out = append(out, v)
		}
	}
	return out
}

package cyber

import "github.com/vuln-sim/vuln-sim/sim"

// ZeroDayLearner is the extension point for attacker models. Implementations
// consume the shared vulnerabilities queue, typically with IsZeroDay, from a
// process of their own. No attacker behaviour ships with this package.
type ZeroDayLearner interface {
	Learn(p *sim.Process, vulnerabilities *sim.FilterQueue[*Vulnerability]) (*Vulnerability, error)
}

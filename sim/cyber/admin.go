package cyber

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// Default administrator parameters, in days unless noted.
const (
	DefaultPatchingPeriod    = 15.0
	DefaultUpgradePeriod     = 30.0
	DefaultAlarmScanInterval = 1.0 / 24.0 / 60.0
	DefaultVulPerUpgrade     = 3.0
	DefaultIDVulnerability   = 0.1 // probability
)

// DetectionHook is called when the monitor identifies a zero-day
// vulnerability from an alarm.
type DetectionHook func(a *Administrator, v *Vulnerability, alarm *Alarm)

// MarkDetected is the default DetectionHook: it fires the vulnerability's
// detection signal and leaves its sojourn timer alone.
func MarkDetected(_ *Administrator, v *Vulnerability, _ *Alarm) {
	v.Detect()
}

// AdminConfig configures an Administrator.
type AdminConfig struct {
	Name              string
	PatchingPeriod    float64 // mean of the exponential wait between patch rounds
	UpgradePeriod     float64 // fixed wait between upgrade rounds
	AlarmScanInterval float64 // time spent examining one alarm
	VulPerUpgrade     float64 // Poisson mean of new vulnerabilities per upgrade
	IDVulnerability   float64 // probability an alarm reveals a zero-day
	DetectionHook     DetectionHook
}

// DefaultAdminConfig returns the documented defaults.
func DefaultAdminConfig() AdminConfig {
	return AdminConfig{
		Name:              "NetworkAdmin",
		PatchingPeriod:    DefaultPatchingPeriod,
		UpgradePeriod:     DefaultUpgradePeriod,
		AlarmScanInterval: DefaultAlarmScanInterval,
		VulPerUpgrade:     DefaultVulPerUpgrade,
		IDVulnerability:   DefaultIDVulnerability,
		DetectionHook:     MarkDetected,
	}
}

// Validate returns ErrInvalidParameter for non-positive periods and means,
// or a detection probability outside [0, 1].
func (c AdminConfig) Validate() error {
	if err := sim.ValidatePositive("patching_period", c.PatchingPeriod); err != nil {
		return err
	}
	if err := sim.ValidatePositive("upgrade_period", c.UpgradePeriod); err != nil {
		return err
	}
	if err := sim.ValidatePositive("alarm_scan_interval", c.AlarmScanInterval); err != nil {
		return err
	}
	if err := sim.ValidatePositive("vul_per_upgrade", c.VulPerUpgrade); err != nil {
		return err
	}
	return sim.ValidateProbability("id_vulnerability", c.IDVulnerability)
}

// AdminStats counts the administrator's mutations.
type AdminStats struct {
	PatchesApplied         int `json:"patches_applied"`
	VulnerabilitiesRemoved int `json:"vulnerabilities_removed"`
	VulnerabilitiesAdded   int `json:"vulnerabilities_added"`
	AlarmsProcessed        int `json:"alarms_processed"`
	Detections             int `json:"detections"`
	Upgrades               int `json:"upgrades"`
}

// Administrator protects a network with three kinds of concurrent processes:
// patching, alarm monitoring, and one upgrade process per item type.
type Administrator struct {
	ctx             *Context
	cfg             AdminConfig
	network         *Network
	vulnerabilities *sim.FilterQueue[*Vulnerability]
	patches         *sim.FilterQueue[*Patch]
	newAlarms       *sim.FilterQueue[*Alarm]
	oldAlarms       *sim.FilterQueue[*Alarm]
	patchWait       sim.DelaySampler
	upgradeCount    sim.CountSampler
	patchesSeen     int // cursor into the patches arrival history
	stats           AdminStats

	patching   *sim.Process
	monitoring *sim.Process
	upgrading  map[ItemType]*sim.Process
}

// NewAdministrator validates cfg and starts the administrator's processes.
// A nil patches queue means no patching programme: the patch process exits
// immediately. A nil vulnerabilities queue only means upgrade-introduced
// vulnerabilities are not published anywhere.
func NewAdministrator(ctx *Context, cfg AdminConfig, network *Network,
	vulnerabilities *sim.FilterQueue[*Vulnerability], patches *sim.FilterQueue[*Patch]) (*Administrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("administrator %q: %w", cfg.Name, err)
	}
	if cfg.Name == "" {
		cfg.Name = "NetworkAdmin"
	}
	if cfg.DetectionHook == nil {
		cfg.DetectionHook = MarkDetected
	}
	if network == nil {
		network = NewNetwork(ctx)
	}
	patchWait, err := sim.NewExponentialDelay(cfg.PatchingPeriod)
	if err != nil {
		return nil, err
	}
	upgradeCount, err := sim.NewPoissonCount(cfg.VulPerUpgrade)
	if err != nil {
		return nil, err
	}

	a := &Administrator{
		ctx:             ctx,
		cfg:             cfg,
		network:         network,
		vulnerabilities: vulnerabilities,
		patches:         patches,
		newAlarms:       sim.NewFilterQueue[*Alarm](ctx.Env, cfg.Name+"/alarms/new"),
		oldAlarms:       sim.NewFilterQueue[*Alarm](ctx.Env, cfg.Name+"/alarms/old"),
		patchWait:       patchWait,
		upgradeCount:    upgradeCount,
		upgrading:       make(map[ItemType]*sim.Process),
	}

	a.patching = ctx.Env.Spawn(cfg.Name+"/patch", a.patch)
	a.monitoring = ctx.Env.Spawn(cfg.Name+"/monitor", a.monitor)
	for _, t := range []ItemType{ItemServer, ItemRouter, ItemSubnet} {
		a.upgrading[t] = ctx.Env.Spawn(cfg.Name+"/upgrade-"+t.String(), func(p *sim.Process) error {
			return a.upgrade(p, t)
		})
	}
	return a, nil
}

func (a *Administrator) String() string { return fmt.Sprintf("<%s>", a.cfg.Name) }

// Name returns the administrator name.
func (a *Administrator) Name() string { return a.cfg.Name }

// Network returns the protected network.
func (a *Administrator) Network() *Network { return a.network }

// NewAlarms is the queue sensors publish into.
func (a *Administrator) NewAlarms() *sim.FilterQueue[*Alarm] { return a.newAlarms }

// OldAlarms holds alarms the monitor has finished with.
func (a *Administrator) OldAlarms() *sim.FilterQueue[*Alarm] { return a.oldAlarms }

// Stats returns a copy of the mutation counters.
func (a *Administrator) Stats() AdminStats { return a.stats }

// PatchesSeen returns the patch cursor: how many published patches have been applied.
func (a *Administrator) PatchesSeen() int { return a.patchesSeen }

// patch sleeps Exponential(patching_period) and then applies every patch
// published since the previous round.
func (a *Administrator) patch(p *sim.Process) error {
	if a.patches == nil {
		return nil
	}
	rng := a.ctx.RNG.ForSubsystem(sim.SubsystemAdministrator)
	for {
		if err := p.Timeout(a.patchWait.Sample(rng)); err != nil {
			return err
		}
		if n := a.ApplyPendingPatches(); n > 0 {
			logrus.Debugf("[day %10.4f] %s applied %d patches", p.Now(), a.cfg.Name, n)
		}
	}
}

// ApplyPendingPatches applies the patches published since the last call and
// advances the cursor. Returns how many patches were applied; calling it
// again with nothing new published mutates nothing.
func (a *Administrator) ApplyPendingPatches() int {
	if a.patches == nil {
		return 0
	}
	pending := a.patches.ArrivedSince(a.patchesSeen)
	for _, patch := range pending {
		a.applyPatch(patch)
	}
	a.patchesSeen = a.patches.Arrived()
	return len(pending)
}

func (a *Administrator) applyPatch(patch *Patch) {
	for _, item := range a.network.Items() {
		for _, v := range patch.Removes() {
			if item.removeVulnerability(v) {
				a.stats.VulnerabilitiesRemoved++
			}
		}
	}
	for _, v := range patch.Adds() {
		a.addVulnerability(v)
	}
	a.stats.PatchesApplied++
	a.ctx.Journal.RecordApplied(trace.PatchRecord{
		Patch:   patch.Name(),
		Clock:   a.ctx.Now(),
		Removes: names(patch.Removes()),
		Adds:    names(patch.Adds()),
		Admin:   a.cfg.Name,
	})
}

// Adopt opens an existing vulnerability on every item whose type it affects,
// e.g. the vulnerabilities present when the network is built.
func (a *Administrator) Adopt(v *Vulnerability) { a.addVulnerability(v) }

// addVulnerability opens v on every item whose type v affects.
func (a *Administrator) addVulnerability(v *Vulnerability) {
	for _, item := range a.network.Items() {
		if v.Affects().Has(item.Type()) && item.addVulnerability(v) {
			a.stats.VulnerabilitiesAdded++
		}
	}
}

// monitor takes alarms from the new queue in arrival order, examines them,
// gives each zero-day a chance to be identified, and files them as old.
func (a *Administrator) monitor(p *sim.Process) error {
	rng := a.ctx.RNG.ForSubsystem(sim.SubsystemAdministrator)
	for {
		alarm, err := a.newAlarms.Get(p, nil)
		if err != nil {
			return err
		}
		if err := p.Timeout(a.cfg.AlarmScanInterval); err != nil {
			return err
		}
		for _, v := range alarm.Vulnerabilities {
			if rng.Float64() < a.cfg.IDVulnerability && v.ZeroDay() {
				a.stats.Detections++
				a.ctx.Journal.RecordDetection(trace.DetectionRecord{
					Vulnerability: v.Name(),
					Clock:         p.Now(),
					Admin:         a.cfg.Name,
					AlarmID:       alarm.ID,
				})
				a.cfg.DetectionHook(a, v, alarm)
			}
		}
		a.oldAlarms.Put(alarm)
		a.stats.AlarmsProcessed++
		a.ctx.Journal.RecordAlarm(trace.AlarmRecord{
			AlarmID:         alarm.ID,
			Clock:           p.Now(),
			Sensor:          alarm.Sensor,
			Stage:           trace.StageProcessed,
			Vulnerabilities: names(alarm.Vulnerabilities),
		})
	}
}

// upgrade models new software arriving on items of type t: every
// upgrade_period it introduces Poisson(vul_per_upgrade) new vulnerabilities.
func (a *Administrator) upgrade(p *sim.Process, t ItemType) error {
	if len(a.network.ItemsOfType(t)) == 0 {
		return nil
	}
	rng := a.ctx.RNG.ForSubsystem(sim.SubsystemAdministrator)
	for {
		if err := p.Timeout(a.cfg.UpgradePeriod); err != nil {
			return err
		}
		n := a.upgradeCount.Sample(rng)
		introduced := make([]*Vulnerability, 0, n)
		for i := 0; i < n; i++ {
			v := NewVulnerability(a.ctx, VulnerabilityOptions{
				PublishPatchTo: a.patches,
				PublishSelfTo:  a.vulnerabilities,
			})
			a.addVulnerability(v)
			introduced = append(introduced, v)
		}
		a.stats.Upgrades++
		a.ctx.Journal.RecordUpgrade(trace.UpgradeRecord{
			Clock:           p.Now(),
			Admin:           a.cfg.Name,
			ItemType:        t.String(),
			Vulnerabilities: names(introduced),
		})
	}
}

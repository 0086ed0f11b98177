package scenario

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/cyber"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// Simulation is a fully wired scenario ready to run.
type Simulation struct {
	Config  *Config
	RunID   string
	Env     *sim.Environment
	RNG     *sim.PartitionedRNG
	Journal *trace.Journal
	Ctx     *cyber.Context

	Manager *cyber.VulnerabilityManager
	Network *cyber.Network
	Admin   *cyber.Administrator
	Sensors []*cyber.Sensor
	Users   []*cyber.User
}

// Build constructs every entity of cfg on a fresh environment. Construction
// order fixes process ids and RNG draw order: vulnerabilities, items,
// administrator, sensors, users.
func Build(cfg *Config) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("scenario config must not be nil")
	}
	lc, err := cfg.Vulnerability.lifecycle()
	if err != nil {
		return nil, fmt.Errorf("vulnerability lifecycle: %w", err)
	}

	env := sim.NewEnvironment()
	s := &Simulation{
		Config:  cfg,
		RunID:   uuid.New().String(),
		Env:     env,
		RNG:     sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
		Journal: trace.NewJournal(trace.TraceLevel(cfg.Trace)),
	}
	s.Ctx = cyber.NewContext(env, s.RNG, s.Journal)
	s.Ctx.Lifecycle = lc

	if err := s.build(); err != nil {
		env.Close()
		return nil, err
	}
	logrus.Infof("built scenario run=%s seed=%d: %d vulnerabilities, %d items, %d sensors, %d users",
		s.RunID, cfg.Seed, cfg.Vulnerabilities, len(s.Network.Items()), len(s.Sensors), len(s.Users))
	return s, nil
}

func (s *Simulation) build() error {
	cfg := s.Config
	var err error
	if s.Manager, err = cyber.NewVulnerabilityManager(s.Ctx, cfg.Vulnerabilities); err != nil {
		return err
	}

	var items []*cyber.Item
	byName := make(map[string]*cyber.Item)
	for _, g := range cfg.itemGroups() {
		for i := 1; i <= g.count; i++ {
			item, err := cyber.NewItem(s.Ctx, g.kind, fmt.Sprintf("%s-%d", g.kind, i))
			if err != nil {
				return err
			}
			items = append(items, item)
			byName[item.Name()] = item
		}
	}
	s.Network = cyber.NewNetwork(s.Ctx, items...)

	var patches *sim.FilterQueue[*cyber.Patch]
	if *cfg.Administrator.Patching {
		patches = s.Manager.Patches()
	}
	if s.Admin, err = cyber.NewAdministrator(s.Ctx, cfg.Administrator.toCyber(), s.Network,
		s.Manager.Vulnerabilities(), patches); err != nil {
		return err
	}
	for _, v := range s.Manager.All() {
		s.Admin.Adopt(v)
	}

	for _, sc := range cfg.Sensors {
		var interval sim.DelaySampler
		if sc.FalseAlarmInterval != nil {
			interval, err = sim.NewFixedDelay(*sc.FalseAlarmInterval)
		} else {
			interval, err = sim.NewExponentialDelay(*sc.FalseAlarmRate)
		}
		if err != nil {
			return fmt.Errorf("sensor %q: %w", sc.Name, err)
		}
		monitoring := make([]*cyber.Item, 0, len(sc.Monitoring))
		for _, name := range sc.Monitoring {
			monitoring = append(monitoring, byName[name])
		}
		sensor, err := cyber.NewSensor(s.Ctx, cyber.SensorConfig{
			Name:               sc.Name,
			FalseAlarmInterval: interval,
			Monitoring:         monitoring,
		}, s.Admin.NewAlarms())
		if err != nil {
			return err
		}
		s.Sensors = append(s.Sensors, sensor)
	}

	for i := 1; i <= cfg.Users; i++ {
		u, err := cyber.NewUser(s.Ctx, s.Network, cyber.UserConfig{Name: fmt.Sprintf("user-%d", i)})
		if err != nil {
			return err
		}
		s.Users = append(s.Users, u)
	}
	return nil
}

// Run advances the simulation to the configured horizon, builds the report
// and releases every process. A Simulation can only be run once.
func (s *Simulation) Run() (*Report, error) {
	start := time.Now()
	if err := s.Env.RunUntil(*s.Config.Horizon); err != nil {
		s.Env.Close()
		return nil, err
	}
	report := s.report(time.Since(start))
	s.Env.Close()
	for _, f := range report.Failures {
		logrus.Warnf("process %s failed at day %.4f: %s", f.Process, f.Clock, f.Error)
	}
	return report, nil
}

// Run builds and runs cfg in one call.
func Run(cfg *Config) (*Report, error) {
	s, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

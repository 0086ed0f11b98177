// Package scenario loads YAML scenario files, wires the cyber entities onto a
// fresh kernel and produces run reports.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/cyber"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// Config is the root of a scenario file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Seed            int64           `yaml:"seed"`
	Horizon         *float64        `yaml:"horizon"` // days
	Vulnerabilities int             `yaml:"vulnerabilities"`
	Network         NetworkConfig   `yaml:"network"`
	Sensors         []SensorConfig  `yaml:"sensors"`
	Administrator   AdminConfig     `yaml:"administrator"`
	Users           int             `yaml:"users"`
	Vulnerability   LifecycleConfig `yaml:"vulnerability"`
	Trace           string          `yaml:"trace"` // "none" (default) or "events"
}

// NetworkConfig gives the number of items of each type.
type NetworkConfig struct {
	Servers int `yaml:"servers"`
	Subnets int `yaml:"subnets"`
	Routers int `yaml:"routers"`
}

// SensorConfig configures one sensor. At most one of FalseAlarmRate
// (exponential mean) and FalseAlarmInterval (fixed) may be set.
type SensorConfig struct {
	Name               string   `yaml:"name"`
	FalseAlarmRate     *float64 `yaml:"false_alarm_rate"`
	FalseAlarmInterval *float64 `yaml:"false_alarm_interval,omitempty"`
	Monitoring         []string `yaml:"monitoring,omitempty"`
}

// AdminConfig holds administrator parameters. Nil pointer fields mean
// "not set" and take the documented defaults.
type AdminConfig struct {
	Name              string   `yaml:"name"`
	Patching          *bool    `yaml:"patching"`
	PatchingPeriod    *float64 `yaml:"patching_period"`
	UpgradePeriod     *float64 `yaml:"upgrade_period"`
	AlarmScanInterval *float64 `yaml:"alarm_scan_interval"`
	VulPerUpgrade     *float64 `yaml:"vul_per_upgrade"`
	IDVulnerability   *float64 `yaml:"id_vulnerability"`
}

// LifecycleConfig holds vulnerability lifecycle parameters.
type LifecycleConfig struct {
	// Distribution is "exponential" (default) or "fixed". Fixed uses the
	// means as exact sojourn times and rounds the patch mean to a count.
	Distribution                string   `yaml:"distribution"`
	UndiscoveredMean            *float64 `yaml:"undiscovered_mean"`
	IdentifiedMean              *float64 `yaml:"identified_mean"`
	PatchNewVulnerabilitiesMean *float64 `yaml:"patch_new_vulnerabilities_mean"`
}

const (
	DistributionExponential = "exponential"
	DistributionFixed       = "fixed"
)

// DefaultHorizon is the run length used when a scenario omits it.
const DefaultHorizon = 1000.0

// LoadConfig reads a scenario file with strict field checking, applies
// defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a scenario document. Unknown fields are errors.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a small scenario with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{
		Seed:            42,
		Vulnerabilities: 10,
		Network:         NetworkConfig{Servers: 4, Subnets: 1, Routers: 2},
		Sensors:         []SensorConfig{{Name: "ids-1"}},
		Users:           5,
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Horizon, DefaultHorizon)
	if c.Trace == "" {
		c.Trace = string(trace.TraceLevelNone)
	}
	for i := range c.Sensors {
		s := &c.Sensors[i]
		if s.Name == "" {
			s.Name = fmt.Sprintf("sensor-%d", i+1)
		}
		if s.FalseAlarmRate == nil && s.FalseAlarmInterval == nil {
			s.FalseAlarmRate = float64Ptr(cyber.DefaultFalseAlarmRate)
		}
	}
	a := &c.Administrator
	if a.Name == "" {
		a.Name = "NetworkAdmin"
	}
	if a.Patching == nil {
		a.Patching = boolPtr(true)
	}
	setDefault(&a.PatchingPeriod, cyber.DefaultPatchingPeriod)
	setDefault(&a.UpgradePeriod, cyber.DefaultUpgradePeriod)
	setDefault(&a.AlarmScanInterval, cyber.DefaultAlarmScanInterval)
	setDefault(&a.VulPerUpgrade, cyber.DefaultVulPerUpgrade)
	setDefault(&a.IDVulnerability, cyber.DefaultIDVulnerability)

	l := &c.Vulnerability
	if l.Distribution == "" {
		l.Distribution = DistributionExponential
	}
	setDefault(&l.UndiscoveredMean, cyber.DefaultUndiscoveredMean)
	setDefault(&l.IdentifiedMean, cyber.DefaultIdentifiedMean)
	setDefault(&l.PatchNewVulnerabilitiesMean, cyber.DefaultPatchAddsMean)
}

// Validate checks counts, names and parameter ranges. Call after ApplyDefaults.
func (c *Config) Validate() error {
	if c.Horizon == nil {
		return fmt.Errorf("horizon must be set")
	}
	if h := *c.Horizon; math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return fmt.Errorf("horizon must be positive and finite, got %v", h)
	}
	if c.Vulnerabilities < 0 {
		return fmt.Errorf("vulnerabilities must be non-negative, got %d", c.Vulnerabilities)
	}
	if c.Users < 0 {
		return fmt.Errorf("users must be non-negative, got %d", c.Users)
	}
	if c.Network.Servers < 0 || c.Network.Subnets < 0 || c.Network.Routers < 0 {
		return fmt.Errorf("network item counts must be non-negative, got %+v", c.Network)
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q; valid: none, events", c.Trace)
	}

	items := make(map[string]bool)
	for _, name := range c.itemNames() {
		items[name] = true
	}
	seen := make(map[string]bool)
	for _, s := range c.Sensors {
		if seen[s.Name] {
			return fmt.Errorf("duplicate sensor name %q", s.Name)
		}
		seen[s.Name] = true
		if s.FalseAlarmRate != nil && s.FalseAlarmInterval != nil {
			return fmt.Errorf("sensor %q: set either false_alarm_rate or false_alarm_interval, not both", s.Name)
		}
		if s.FalseAlarmRate != nil {
			if err := sim.ValidatePositive("false_alarm_rate", *s.FalseAlarmRate); err != nil {
				return fmt.Errorf("sensor %q: %w", s.Name, err)
			}
		}
		if s.FalseAlarmInterval != nil {
			if err := sim.ValidatePositive("false_alarm_interval", *s.FalseAlarmInterval); err != nil {
				return fmt.Errorf("sensor %q: %w", s.Name, err)
			}
		}
		for _, m := range s.Monitoring {
			if !items[m] {
				return fmt.Errorf("sensor %q monitors unknown item %q", s.Name, m)
			}
		}
	}

	if err := c.Administrator.toCyber().Validate(); err != nil {
		return fmt.Errorf("administrator %q: %w", c.Administrator.Name, err)
	}

	l := c.Vulnerability
	switch l.Distribution {
	case DistributionExponential, DistributionFixed:
	default:
		return fmt.Errorf("unknown vulnerability distribution %q; valid: exponential, fixed", l.Distribution)
	}
	if err := sim.ValidatePositive("undiscovered_mean", *l.UndiscoveredMean); err != nil {
		return err
	}
	if err := sim.ValidatePositive("identified_mean", *l.IdentifiedMean); err != nil {
		return err
	}
	adds := *l.PatchNewVulnerabilitiesMean
	if l.Distribution == DistributionFixed {
		// a fixed count of zero is allowed
		if math.IsNaN(adds) || math.IsInf(adds, 0) || adds < 0 {
			return sim.InvalidParameterf("patch_new_vulnerabilities_mean must be finite and non-negative, got %v", adds)
		}
		return nil
	}
	return sim.ValidatePositive("patch_new_vulnerabilities_mean", adds)
}

// itemNames returns the generated item names, e.g. Server-1, in build order.
func (c *Config) itemNames() []string {
	var out []string
	for _, g := range c.itemGroups() {
		for i := 1; i <= g.count; i++ {
			out = append(out, fmt.Sprintf("%s-%d", g.kind, i))
		}
	}
	return out
}

type itemGroup struct {
	kind  cyber.ItemType
	count int
}

func (c *Config) itemGroups() []itemGroup {
	return []itemGroup{
		{cyber.ItemServer, c.Network.Servers},
		{cyber.ItemSubnet, c.Network.Subnets},
		{cyber.ItemRouter, c.Network.Routers},
	}
}

func (a AdminConfig) toCyber() cyber.AdminConfig {
	cfg := cyber.DefaultAdminConfig()
	cfg.Name = a.Name
	copyIfSet(&cfg.PatchingPeriod, a.PatchingPeriod)
	copyIfSet(&cfg.UpgradePeriod, a.UpgradePeriod)
	copyIfSet(&cfg.AlarmScanInterval, a.AlarmScanInterval)
	copyIfSet(&cfg.VulPerUpgrade, a.VulPerUpgrade)
	copyIfSet(&cfg.IDVulnerability, a.IDVulnerability)
	return cfg
}

// lifecycle builds the cyber lifecycle from the configured distribution.
func (l LifecycleConfig) lifecycle() (*cyber.Lifecycle, error) {
	if l.Distribution == DistributionFixed {
		undiscovered, err := sim.NewFixedDelay(*l.UndiscoveredMean)
		if err != nil {
			return nil, err
		}
		identified, err := sim.NewFixedDelay(*l.IdentifiedMean)
		if err != nil {
			return nil, err
		}
		adds := sim.FixedCount(int(math.Round(*l.PatchNewVulnerabilitiesMean)))
		return cyber.NewLifecycleFromSamplers(undiscovered, identified, adds)
	}
	return cyber.NewLifecycle(*l.UndiscoveredMean, *l.IdentifiedMean, *l.PatchNewVulnerabilitiesMean)
}

func setDefault(field **float64, value float64) {
	if *field == nil {
		*field = float64Ptr(value)
	}
}

func copyIfSet(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func float64Ptr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

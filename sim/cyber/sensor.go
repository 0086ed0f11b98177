package cyber

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// DefaultFalseAlarmRate is the mean number of days between false alarms.
const DefaultFalseAlarmRate = 10.0

// alarmNamespace scopes alarm IDs so they are stable across runs with the same seed.
var alarmNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("vuln-sim/alarm"))

// Alarm is a sensor event. False alarms carry no vulnerabilities.
type Alarm struct {
	ID              string
	Timestamp       float64
	Sensor          string
	Vulnerabilities []*Vulnerability
}

// False reports whether the alarm carries no detected vulnerabilities.
func (a *Alarm) False() bool { return len(a.Vulnerabilities) == 0 }

func (a *Alarm) String() string {
	return fmt.Sprintf("<Alarm %s from %s at %.2f>", a.ID, a.Sensor, a.Timestamp)
}

// SensorConfig configures a Sensor.
type SensorConfig struct {
	Name string
	// FalseAlarmInterval defaults to Exponential(DefaultFalseAlarmRate).
	FalseAlarmInterval sim.DelaySampler
	// Monitoring lists the items the sensor watches.
	Monitoring []*Item
}

// Sensor is network intrusion-detection software. It is wired to its
// administrator's alarm queue at construction and never re-targeted.
type Sensor struct {
	ctx      *Context
	name     string
	interval sim.DelaySampler
	alarms   *sim.FilterQueue[*Alarm]
	monitors []*Item
	raised   int
	warning  *sim.Process
}

// NewSensor creates a sensor publishing into alarms and starts its false
// alarm process.
func NewSensor(ctx *Context, cfg SensorConfig, alarms *sim.FilterQueue[*Alarm]) (*Sensor, error) {
	if alarms == nil {
		return nil, sim.InvalidParameterf("sensor %q needs an alarm queue", cfg.Name)
	}
	if cfg.Name == "" {
		cfg.Name = "Sensor X"
	}
	interval := cfg.FalseAlarmInterval
	if interval == nil {
		var err error
		if interval, err = sim.NewExponentialDelay(DefaultFalseAlarmRate); err != nil {
			return nil, err
		}
	}
	if err := sim.ValidatePositive("false alarm interval mean", interval.Mean()); err != nil {
		return nil, fmt.Errorf("sensor %q: %w", cfg.Name, err)
	}
	s := &Sensor{
		ctx:      ctx,
		name:     cfg.Name,
		interval: interval,
		alarms:   alarms,
		monitors: append([]*Item(nil), cfg.Monitoring...),
	}
	s.warning = ctx.Env.Spawn("false-alarm-"+s.name, s.falseAlarms)
	return s, nil
}

func (s *Sensor) String() string { return fmt.Sprintf("<%s>", s.name) }

// Name returns the sensor name.
func (s *Sensor) Name() string { return s.name }

// Monitoring returns the watched items.
func (s *Sensor) Monitoring() []*Item { return append([]*Item(nil), s.monitors...) }

// Raised returns how many alarms the sensor has emitted.
func (s *Sensor) Raised() int { return s.raised }

func (s *Sensor) falseAlarms(p *sim.Process) error {
	rng := s.ctx.RNG.ForSubsystem(sim.SubsystemSensor(s.name))
	for {
		if err := p.Timeout(s.interval.Sample(rng)); err != nil {
			return err
		}
		s.Raise()
	}
}

// Raise emits an alarm stamped with the current time. Collaborators that
// observe attacks pass the vulnerabilities involved.
func (s *Sensor) Raise(vulns ...*Vulnerability) *Alarm {
	s.raised++
	alarm := &Alarm{
		ID:              uuid.NewSHA1(alarmNamespace, []byte(fmt.Sprintf("%s/%d", s.name, s.raised))).String(),
		Timestamp:       s.ctx.Now(),
		Sensor:          s.name,
		Vulnerabilities: vulns,
	}
	logrus.Debugf("[day %10.4f] %s raised %s", alarm.Timestamp, s.name, alarm.ID)
	s.ctx.Journal.RecordAlarm(trace.AlarmRecord{
		AlarmID:         alarm.ID,
		Clock:           alarm.Timestamp,
		Sensor:          s.name,
		Stage:           trace.StageRaised,
		Vulnerabilities: names(vulns),
	})
	s.alarms.Put(alarm)
	return alarm
}

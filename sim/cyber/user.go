package cyber

import (
	"fmt"

	"github.com/vuln-sim/vuln-sim/sim"
)

// UserLevel is a user's privilege level.
type UserLevel string

const (
	UserAdmin      UserLevel = "admin"
	UserPrivileged UserLevel = "privileged"
	UserBasic      UserLevel = "basic"
)

// UserLevels and UserLevelFrequencies define the level draw for users
// created without an explicit level.
var (
	UserLevels           = []UserLevel{UserAdmin, UserPrivileged, UserBasic}
	UserLevelFrequencies = []float64{0.07, 0.13, 0.8}
)

// Shift lengths in hours.
const (
	DefaultShiftStart = 8.0
	shiftHours        = 8.0
	restHours         = 16.0
	hoursPerDay       = 24.0
)

// UserConfig configures a User.
type UserConfig struct {
	Name  string
	Level UserLevel // empty or unknown draws from UserLevelFrequencies
	// ShiftStart is the hour offset of the first shift; nil means DefaultShiftStart.
	ShiftStart *float64
}

// User logs on to the network for a shift, then leaves and rests.
type User struct {
	ctx     *Context
	name    string
	level   UserLevel
	network *Network
	shifts  int
	working *sim.Process
}

// NewUser creates a user and starts its work process.
func NewUser(ctx *Context, network *Network, cfg UserConfig) (*User, error) {
	if network == nil {
		return nil, sim.InvalidParameterf("user %q needs a network", cfg.Name)
	}
	shiftStart := DefaultShiftStart
	if cfg.ShiftStart != nil {
		shiftStart = *cfg.ShiftStart
	}
	if shiftStart < 0 {
		return nil, sim.InvalidParameterf("shift start must be non-negative, got %v", shiftStart)
	}
	level := cfg.Level
	if !validUserLevel(level) {
		levels, err := sim.NewCategorical(UserLevelFrequencies)
		if err != nil {
			return nil, err
		}
		level = UserLevels[levels.Sample(ctx.RNG.ForSubsystem(sim.SubsystemUsers))]
	}
	u := &User{ctx: ctx, name: cfg.Name, level: level, network: network}
	u.working = ctx.Env.Spawn("work-"+u.name, func(p *sim.Process) error {
		return u.work(p, shiftStart)
	})
	return u, nil
}

func validUserLevel(l UserLevel) bool {
	for _, known := range UserLevels {
		if l == known {
			return true
		}
	}
	return false
}

func (u *User) String() string { return fmt.Sprintf("<User %s (%s)>", u.name, u.level) }

// Name returns the user name.
func (u *User) Name() string { return u.name }

// Level returns the privilege level.
func (u *User) Level() UserLevel { return u.level }

// Shifts returns the number of completed shifts.
func (u *User) Shifts() int { return u.shifts }

// OnNetwork reports whether the user is currently logged on.
func (u *User) OnNetwork() bool {
	ok, _ := u.network.Users().Contains(func(o *User) bool { return o == u })
	return ok
}

func (u *User) work(p *sim.Process, shiftStart float64) error {
	if err := p.Timeout(shiftStart / hoursPerDay); err != nil {
		return err
	}
	users := u.network.Users()
	for {
		users.Put(u)
		if err := p.Timeout(shiftHours / hoursPerDay); err != nil {
			return err
		}
		if _, err := users.Get(p, func(o *User) bool { return o == u }); err != nil {
			return err
		}
		u.shifts++
		if err := p.Timeout(restHours / hoursPerDay); err != nil {
			return err
		}
	}
}

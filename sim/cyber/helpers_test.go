package cyber

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vuln-sim/vuln-sim/sim"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

func TestMain(m *testing.M) {
	// Suppress verbose simulation logs during tests
	// Set DEBUG_TESTS=1 to see full logs: DEBUG_TESTS=1 go test ./sim/cyber/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

// newTestContext returns a context with an events journal. The environment
// is closed when the test ends.
func newTestContext(t *testing.T, seed int64) *Context {
	t.Helper()
	env := sim.NewEnvironment()
	t.Cleanup(env.Close)
	return NewContext(env, sim.NewPartitionedRNG(sim.NewSimulationKey(seed)), trace.NewJournal(trace.TraceLevelEvents))
}

// fixedLifecycle uses exact sojourn times and a fixed number of patch side effects.
func fixedLifecycle(t *testing.T, undiscovered, identified float64, adds int) *Lifecycle {
	t.Helper()
	u, err := sim.NewFixedDelay(undiscovered)
	require.NoError(t, err)
	i, err := sim.NewFixedDelay(identified)
	require.NoError(t, err)
	lc, err := NewLifecycleFromSamplers(u, i, sim.FixedCount(adds))
	require.NoError(t, err)
	return lc
}

func fixedDelay(t *testing.T, v float64) sim.DelaySampler {
	t.Helper()
	d, err := sim.NewFixedDelay(v)
	require.NoError(t, err)
	return d
}

func newTestItem(t *testing.T, ctx *Context, kind ItemType, name string) *Item {
	t.Helper()
	item, err := NewItem(ctx, kind, name)
	require.NoError(t, err)
	return item
}

// quietSensor raises no false alarms within a test's horizon.
func quietSensor(t *testing.T, ctx *Context, alarms *sim.FilterQueue[*Alarm]) *Sensor {
	t.Helper()
	s, err := NewSensor(ctx, SensorConfig{Name: "quiet", FalseAlarmInterval: fixedDelay(t, 1e6)}, alarms)
	require.NoError(t, err)
	return s
}

package scenario

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuln-sim/vuln-sim/sim/cyber"
)

func mustParse(t *testing.T, doc string) *Config {
	t.Helper()
	cfg, err := ParseConfig([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func TestRun_EmptyWorld_StaysQuiet(t *testing.T) {
	// GIVEN no vulnerabilities, no patching programme and no sensors
	cfg := mustParse(t, "vulnerabilities: 0\nhorizon: 1000\nadministrator:\n  patching: false\n")

	// WHEN run for 1000 days
	report, err := Run(cfg)

	// THEN nothing happens and the clock reaches the horizon
	require.NoError(t, err)
	assert.Equal(t, 1000.0, report.Clock)
	assert.Zero(t, report.AlarmsRaised)
	assert.Zero(t, report.PatchesPublished)
	assert.Zero(t, report.Admin.PatchesApplied)
	assert.Zero(t, report.Vulnerabilities)
	assert.Empty(t, report.Failures)
}

func TestRun_FixedLifecycle_PatchesAtSumOfSojourns(t *testing.T) {
	// GIVEN one vulnerability with fixed sojourns of 5 and 10 days
	cfg := mustParse(t, `
vulnerabilities: 1
horizon: 20
vulnerability:
  distribution: fixed
  undiscovered_mean: 5
  identified_mean: 10
  patch_new_vulnerabilities_mean: 0
`)

	// WHEN run past day 15
	report, err := Run(cfg)

	// THEN exactly one patch is published and time to patch is 15 days
	require.NoError(t, err)
	assert.Equal(t, 1, report.PatchesPublished)
	assert.Equal(t, map[string]int{cyber.StatePatched: 1}, report.ByState)
	assert.Equal(t, 15.0, report.TimeToPatchMean)
	assert.Equal(t, 15.0, report.TimeToPatchP90)
}

func TestRun_FixedFalseAlarms_AreRaisedAndProcessed(t *testing.T) {
	// GIVEN one sensor raising a false alarm every 3 days
	cfg := mustParse(t, "vulnerabilities: 0\nhorizon: 10\nsensors:\n  - false_alarm_interval: 3\n")

	// WHEN run for 10 days
	report, err := Run(cfg)

	// THEN alarms at days 3, 6 and 9 were raised and all moved to the old queue
	require.NoError(t, err)
	assert.Equal(t, 3, report.AlarmsRaised)
	assert.Equal(t, 3, report.Admin.AlarmsProcessed)
	assert.Zero(t, report.AlarmsPending)
	assert.Zero(t, report.Admin.Detections)
}

func TestRun_UsersWorkDailyShifts(t *testing.T) {
	// GIVEN two users starting at hour 8
	cfg := mustParse(t, "vulnerabilities: 0\nusers: 2\nhorizon: 2\n")

	// WHEN run for two days
	report, err := Run(cfg)

	// THEN each user completed the day 0 and day 1 shifts
	require.NoError(t, err)
	assert.Equal(t, 4, report.UserShifts)
}

func TestBuild_InitialVulnerabilitiesAreOpenOnAffectedItems(t *testing.T) {
	// GIVEN one item of each type and five initial vulnerabilities
	cfg := mustParse(t, "vulnerabilities: 5\nnetwork:\n  servers: 1\n  subnets: 1\n  routers: 1\n")

	// WHEN the scenario is built
	s, err := Build(cfg)
	require.NoError(t, err)
	defer s.Env.Close()

	// THEN every vulnerability is open on exactly the item of its affected type
	total := 0
	for _, n := range s.Network.OpenVulnerabilities() {
		total += n
	}
	assert.Equal(t, 5, total)
	for _, v := range s.Manager.All() {
		for _, item := range s.Network.Items() {
			assert.Equal(t, v.Affects().Has(item.Type()), item.HasVulnerability(v), "%s on %s", v, item)
		}
	}
}

func TestBuild_SensorsPublishToAdministrator(t *testing.T) {
	cfg := mustParse(t, "network:\n  servers: 1\nsensors:\n  - name: ids\n    monitoring: [Server-1]\n")

	s, err := Build(cfg)
	require.NoError(t, err)
	defer s.Env.Close()

	require.Len(t, s.Sensors, 1)
	require.Len(t, s.Sensors[0].Monitoring(), 1)
	assert.Equal(t, "Server-1", s.Sensors[0].Monitoring()[0].Name())

	s.Sensors[0].Raise()
	assert.Equal(t, 1, s.Admin.NewAlarms().Arrived())
}

func TestRun_SameSeed_SameReport(t *testing.T) {
	// GIVEN the built-in scenario run twice with the same seed
	a, err := Run(DefaultConfig())
	require.NoError(t, err)
	b, err := Run(DefaultConfig())
	require.NoError(t, err)

	// THEN everything but the run identity and wall time matches
	assert.NotEqual(t, a.RunID, b.RunID)
	a.RunID, b.RunID = "", ""
	a.WallTimeSeconds, b.WallTimeSeconds = 0, 0
	assert.Equal(t, a, b)
}

func TestRun_DifferentSeeds_Diverge(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg2 := DefaultConfig()
	cfg2.Seed = cfg1.Seed + 1

	a, err := Run(cfg1)
	require.NoError(t, err)
	b, err := Run(cfg2)
	require.NoError(t, err)

	a.RunID, b.RunID = "", ""
	a.WallTimeSeconds, b.WallTimeSeconds = 0, 0
	a.Seed, b.Seed = 0, 0
	assert.NotEqual(t, a, b)
}

func TestRun_EventsTrace_IsSummarized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trace = "events"
	cfg.Horizon = float64Ptr(200)

	report, err := Run(cfg)
	require.NoError(t, err)

	require.NotNil(t, report.Trace)
	assert.Equal(t, report.AlarmsRaised, report.Trace.AlarmsBySensor["ids-1"])
	assert.Equal(t, report.PatchesPublished, report.Trace.PatchesPublished)
}

func TestRun_EventsTrace_TimeToPatchMatchesReport(t *testing.T) {
	// GIVEN patches that introduce vulnerabilities created after day 0
	cfg := mustParse(t, `
vulnerabilities: 2
horizon: 4.5
trace: events
vulnerability:
  distribution: fixed
  undiscovered_mean: 1
  identified_mean: 1
  patch_new_vulnerabilities_mean: 1
`)

	// WHEN run
	report, err := Run(cfg)

	// THEN the journal and the report agree on a 2 day time to patch
	require.NoError(t, err)
	require.NotNil(t, report.Trace)
	assert.Equal(t, 4, report.Trace.TransitionsByState[cyber.StatePatched])
	assert.InDelta(t, 2.0, report.TimeToPatchMean, 1e-9)
	assert.InDelta(t, report.TimeToPatchMean, report.Trace.MeanTimeToPatch, 1e-9)
}

func TestReport_WriteJSONAndPrint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = float64Ptr(50)
	report, err := Run(cfg)
	require.NoError(t, err)

	var js bytes.Buffer
	require.NoError(t, report.WriteJSON(&js))
	var decoded Report
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Equal(t, report.Admin, decoded.Admin)

	var text bytes.Buffer
	report.Print(&text)
	assert.Contains(t, text.String(), "=== Simulation Report ===")
	assert.Contains(t, text.String(), report.RunID)
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 3.0, percentile(data, 50))
	assert.Equal(t, 1.0, percentile(data, 0))
	assert.Equal(t, 5.0, percentile(data, 100))
	assert.InDelta(t, 4.6, percentile(data, 90), 1e-12)
	assert.Zero(t, percentile(nil, 50))
	assert.Equal(t, 3.0, mean(data))
}

package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuln-sim/vuln-sim/sim/internal/testutil"
)

func TestRun_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.Scenario))
			require.NoError(t, err)

			report, err := Run(cfg)
			require.NoError(t, err)

			want := tc.Metrics
			assert.Equal(t, want.Vulnerabilities, report.Vulnerabilities, "vulnerabilities")
			assert.Equal(t, want.ByState, report.ByState, "vulnerabilities_by_state")
			assert.Equal(t, want.PatchesPublished, report.PatchesPublished, "patches_published")
			assert.Equal(t, want.AlarmsRaised, report.AlarmsRaised, "alarms_raised")
			assert.Equal(t, want.AlarmsProcessed, report.Admin.AlarmsProcessed, "alarms_processed")
			assert.Equal(t, want.UserShifts, report.UserShifts, "user_shifts")
			assert.Empty(t, report.Failures)
			testutil.AssertFloat64Equal(t, "clock", want.Clock, report.Clock, 1e-9)
			testutil.AssertFloat64Equal(t, "time_to_patch_mean", want.TimeToPatchMean, report.TimeToPatchMean, 1e-9)
		})
	}
}

package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/vuln-sim/vuln-sim/sim/cyber"
	"github.com/vuln-sim/vuln-sim/sim/trace"
)

// Report summarizes one run.
type Report struct {
	RunID   string  `json:"run_id"`
	Seed    int64   `json:"seed"`
	Horizon float64 `json:"horizon"`
	Clock   float64 `json:"clock"`

	Vulnerabilities  int            `json:"vulnerabilities"`
	ByState          map[string]int `json:"vulnerabilities_by_state"`
	ZeroDays         int            `json:"zero_days"`
	Detected         int            `json:"detected"`
	PatchesPublished int            `json:"patches_published"`

	// Days from creation to PATCHED, over patched vulnerabilities.
	TimeToPatchMean float64 `json:"time_to_patch_mean"`
	TimeToPatchP50  float64 `json:"time_to_patch_p50"`
	TimeToPatchP90  float64 `json:"time_to_patch_p90"`

	Admin               cyber.AdminStats `json:"administrator"`
	AlarmsRaised        int              `json:"alarms_raised"`
	AlarmsPending       int              `json:"alarms_pending"`
	OpenVulnerabilities map[string]int   `json:"open_vulnerabilities"`
	UserShifts          int              `json:"user_shifts"`

	Failures []FailureReport     `json:"failures,omitempty"`
	Trace    *trace.TraceSummary `json:"trace,omitempty"`

	WallTimeSeconds float64 `json:"simulation_duration_s"`
}

// FailureReport is a failed process as it appears in a report.
type FailureReport struct {
	Process string  `json:"process"`
	Clock   float64 `json:"clock"`
	Error   string  `json:"error"`
}

func (s *Simulation) report(wall time.Duration) *Report {
	r := &Report{
		RunID:               s.RunID,
		Seed:                s.Config.Seed,
		Horizon:             *s.Config.Horizon,
		Clock:               s.Env.Now(),
		ByState:             s.Manager.CountByState(),
		ZeroDays:            len(s.Manager.ZeroDays()),
		PatchesPublished:    s.Manager.Patches().Arrived(),
		Admin:               s.Admin.Stats(),
		AlarmsPending:       s.Admin.NewAlarms().Len(),
		OpenVulnerabilities: s.Network.OpenVulnerabilities(),
		WallTimeSeconds:     wall.Seconds(),
	}

	var ttp []float64
	for _, v := range s.Manager.All() {
		r.Vulnerabilities++
		if v.Detected() {
			r.Detected++
		}
		if v.Patched() && v.Patch() != nil {
			ttp = append(ttp, v.Patch().CreatedAt()-v.CreatedAt())
		}
	}
	sort.Float64s(ttp)
	if len(ttp) > 0 {
		r.TimeToPatchMean = mean(ttp)
		r.TimeToPatchP50 = percentile(ttp, 50)
		r.TimeToPatchP90 = percentile(ttp, 90)
	}

	for _, sensor := range s.Sensors {
		r.AlarmsRaised += sensor.Raised()
	}
	for _, u := range s.Users {
		r.UserShifts += u.Shifts()
	}
	for _, f := range s.Env.Failures() {
		r.Failures = append(r.Failures, FailureReport{Process: f.Name, Clock: f.Clock, Error: f.Err.Error()})
	}
	if s.Journal != nil {
		r.Trace = trace.Summarize(s.Journal)
	}
	return r
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Report ===")
	fmt.Fprintf(w, "Run                  : %s (seed %d)\n", r.RunID, r.Seed)
	fmt.Fprintf(w, "Clock                : %.2f / %.2f days\n", r.Clock, r.Horizon)
	fmt.Fprintf(w, "Vulnerabilities      : %d (%d zero-day, %d detected)\n", r.Vulnerabilities, r.ZeroDays, r.Detected)
	for _, state := range sortedKeys(r.ByState) {
		fmt.Fprintf(w, "  %-19s: %d\n", state, r.ByState[state])
	}
	fmt.Fprintf(w, "Patches published    : %d\n", r.PatchesPublished)
	fmt.Fprintf(w, "Patches applied      : %d\n", r.Admin.PatchesApplied)
	if r.Admin.PatchesApplied > 0 || r.PatchesPublished > 0 {
		fmt.Fprintf(w, "Time to patch        : mean %.2f, p50 %.2f, p90 %.2f days\n",
			r.TimeToPatchMean, r.TimeToPatchP50, r.TimeToPatchP90)
	}
	fmt.Fprintf(w, "Alarms               : %d raised, %d processed, %d pending\n",
		r.AlarmsRaised, r.Admin.AlarmsProcessed, r.AlarmsPending)
	fmt.Fprintf(w, "Upgrades             : %d (+%d item vulnerabilities)\n", r.Admin.Upgrades, r.Admin.VulnerabilitiesAdded)
	for _, item := range sortedKeys(r.OpenVulnerabilities) {
		fmt.Fprintf(w, "  %-19s: %d open\n", item, r.OpenVulnerabilities[item])
	}
	fmt.Fprintf(w, "User shifts          : %d\n", r.UserShifts)
	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "Failed processes     : %d\n", len(r.Failures))
	}
}

// percentile returns the p-th percentile of sorted data by linear
// interpolation between closest ranks.
func percentile(data []float64, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if lowerIdx == upperIdx {
		return data[lowerIdx]
	}
	return data[lowerIdx] + (data[upperIdx]-data[lowerIdx])*(rank-float64(lowerIdx))
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

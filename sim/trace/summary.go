package trace

// TraceSummary aggregates statistics from a Journal.
type TraceSummary struct {
	Transitions        int            `json:"transitions"`
	PatchesPublished   int            `json:"patches_published"`
	PatchesApplied     int            `json:"patches_applied"`
	AlarmsRaised       int            `json:"alarms_raised"`
	AlarmsProcessed    int            `json:"alarms_processed"`
	Detections         int            `json:"detections"`
	UpgradeCycles      int            `json:"upgrade_cycles"`
	MeanTimeToPatch    float64        `json:"mean_time_to_patch"` // days from creation to PATCHED, averaged
	TransitionsByState map[string]int `json:"transitions_by_state"`
	AlarmsBySensor     map[string]int `json:"alarms_by_sensor"`
}

// Summarize computes aggregate statistics from a Journal.
// Safe for nil or empty journals (returns zero-value fields).
func Summarize(j *Journal) *TraceSummary {
	summary := &TraceSummary{
		TransitionsByState: make(map[string]int),
		AlarmsBySensor:     make(map[string]int),
	}
	if j == nil {
		return summary
	}

	summary.Transitions = len(j.Transitions)
	summary.PatchesPublished = len(j.Published)
	summary.PatchesApplied = len(j.Applied)
	summary.Detections = len(j.Detections)
	summary.UpgradeCycles = len(j.Upgrades)

	patched := 0
	totalTimeToPatch := 0.0
	for _, t := range j.Transitions {
		summary.TransitionsByState[t.To]++
		if t.To == "PATCHED" {
			patched++
			totalTimeToPatch += t.Clock - t.CreatedAt
		}
	}
	if patched > 0 {
		summary.MeanTimeToPatch = totalTimeToPatch / float64(patched)
	}

	for _, a := range j.Alarms {
		switch a.Stage {
		case StageRaised:
			summary.AlarmsRaised++
			summary.AlarmsBySensor[a.Sensor]++
		case StageProcessed:
			summary.AlarmsProcessed++
		}
	}

	return summary
}

// Package trace provides the event journal consumed by reporting.
// This package has no dependencies on sim/ or sim/cyber/; it stores pure data types.
package trace

// TransitionRecord captures a vulnerability moving between states.
type TransitionRecord struct {
	Vulnerability string  `json:"vulnerability" yaml:"vulnerability"`
	Clock         float64 `json:"clock" yaml:"clock"`
	From          string  `json:"from" yaml:"from"`
	To            string  `json:"to" yaml:"to"`
	CreatedAt     float64 `json:"created_at" yaml:"created_at"` // creation time of the vulnerability
}

// PatchRecord captures a patch being published or applied.
type PatchRecord struct {
	Patch   string   `json:"patch" yaml:"patch"`
	Clock   float64  `json:"clock" yaml:"clock"`
	Removes []string `json:"removes" yaml:"removes"`
	Adds    []string `json:"adds" yaml:"adds"`
	// Admin is empty when the record is a publication.
	Admin string `json:"admin,omitempty" yaml:"admin,omitempty"`
}

// AlarmRecord captures an alarm being raised by a sensor or processed by an administrator.
type AlarmRecord struct {
	AlarmID         string   `json:"alarm_id" yaml:"alarm_id"`
	Clock           float64  `json:"clock" yaml:"clock"`
	Sensor          string   `json:"sensor" yaml:"sensor"`
	Stage           Stage    `json:"stage" yaml:"stage"`
	Vulnerabilities []string `json:"vulnerabilities,omitempty" yaml:"vulnerabilities,omitempty"`
}

// Stage distinguishes alarm lifecycle records.
type Stage string

const (
	StageRaised    Stage = "raised"
	StageProcessed Stage = "processed"
)

// DetectionRecord captures an administrator identifying a zero-day vulnerability.
type DetectionRecord struct {
	Vulnerability string  `json:"vulnerability" yaml:"vulnerability"`
	Clock         float64 `json:"clock" yaml:"clock"`
	Admin         string  `json:"admin" yaml:"admin"`
	AlarmID       string  `json:"alarm_id" yaml:"alarm_id"`
}

// UpgradeRecord captures one upgrade cycle for an item type.
type UpgradeRecord struct {
	Clock           float64  `json:"clock" yaml:"clock"`
	Admin           string   `json:"admin" yaml:"admin"`
	ItemType        string   `json:"item_type" yaml:"item_type"`
	Vulnerabilities []string `json:"vulnerabilities" yaml:"vulnerabilities"`
}

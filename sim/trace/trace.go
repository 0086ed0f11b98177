package trace

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TraceLevel controls the verbosity of journaling.
type TraceLevel string

const (
	// TraceLevelNone disables journaling (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every transition, patch, alarm, detection and upgrade.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Journal collects records during a simulation run. A nil *Journal is valid
// and discards everything, so producers never need to check.
type Journal struct {
	Level       TraceLevel         `yaml:"level"`
	Transitions []TransitionRecord `yaml:"transitions"`
	Published   []PatchRecord      `yaml:"published"`
	Applied     []PatchRecord      `yaml:"applied"`
	Alarms      []AlarmRecord      `yaml:"alarms"`
	Detections  []DetectionRecord  `yaml:"detections"`
	Upgrades    []UpgradeRecord    `yaml:"upgrades"`
}

// NewJournal creates a Journal ready for recording, or nil for TraceLevelNone.
func NewJournal(level TraceLevel) *Journal {
	if level == TraceLevelNone || level == "" {
		return nil
	}
	return &Journal{Level: level}
}

// RecordTransition appends a state transition record.
func (j *Journal) RecordTransition(r TransitionRecord) {
	if j == nil {
		return
	}
	j.Transitions = append(j.Transitions, r)
}

// RecordPublished appends a patch publication record.
func (j *Journal) RecordPublished(r PatchRecord) {
	if j == nil {
		return
	}
	j.Published = append(j.Published, r)
}

// RecordApplied appends a patch application record.
func (j *Journal) RecordApplied(r PatchRecord) {
	if j == nil {
		return
	}
	j.Applied = append(j.Applied, r)
}

// RecordAlarm appends an alarm record.
func (j *Journal) RecordAlarm(r AlarmRecord) {
	if j == nil {
		return
	}
	j.Alarms = append(j.Alarms, r)
}

// RecordDetection appends a detection record.
func (j *Journal) RecordDetection(r DetectionRecord) {
	if j == nil {
		return
	}
	j.Detections = append(j.Detections, r)
}

// RecordUpgrade appends an upgrade record.
func (j *Journal) RecordUpgrade(r UpgradeRecord) {
	if j == nil {
		return
	}
	j.Upgrades = append(j.Upgrades, r)
}

// WriteYAML dumps the journal to path.
func (j *Journal) WriteYAML(path string) error {
	data, err := yaml.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshalling journal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

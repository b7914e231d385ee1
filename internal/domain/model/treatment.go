package model

import "time"

// Treatment event types this service cares about. The remote log carries many
// more; anything else parses into KindUnrecognized and is dropped per entry.
const (
	EventTempOverride = "Temporary Override"
	EventTempTarget   = "Temporary Target"
)

// TreatmentKind tags a parsed treatment-log entry.
type TreatmentKind int

const (
	// KindOverride covers override-style entries, including entries whose
	// eventType is absent; the fetched feed is already override-focused and
	// the note is the payload that matters.
	KindOverride TreatmentKind = iota
	// KindTempTarget is a temporary glucose target entry.
	KindTempTarget
	// KindUnrecognized marks entries that cannot participate in
	// reconciliation (no parseable timestamp).
	KindUnrecognized
)

// TreatmentEntry is one record of the remote treatment log. The feed is
// loosely typed; every field except eventType may be absent.
type TreatmentEntry struct {
	EventType    string   `json:"eventType,omitempty"`
	Timestamp    string   `json:"timestamp,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
	Duration     *float64 `json:"duration,omitempty"` // minutes
	DurationType string   `json:"durationType,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	EnteredBy    string   `json:"enteredBy,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Time returns the entry timestamp, preferring the "timestamp" field and
// falling back to "created_at". The second return is false when neither
// parses.
func (e TreatmentEntry) Time() (time.Time, bool) {
	for _, raw := range []string{e.Timestamp, e.CreatedAt} {
		if raw == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Ongoing reports whether the entry carries the open-ended duration marker.
func (e TreatmentEntry) Ongoing() bool {
	return e.DurationType != ""
}

// Kind classifies the entry. Entries without a parseable timestamp are
// unrecognized; the per-entry fault tolerance of reconciliation depends on
// dropping them instead of failing the pass.
func (e TreatmentEntry) Kind() TreatmentKind {
	if _, ok := e.Time(); !ok {
		return KindUnrecognized
	}
	if e.EventType == EventTempTarget {
		return KindTempTarget
	}
	return KindOverride
}

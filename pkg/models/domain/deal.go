package domain

import "time"

// DealRecord is the normalized in-memory form of one CRM deal. A stage absent
// from StageTimestamps means the deal never entered it. Records are immutable
// for the duration of one matrix build; a fresh extraction replaces the whole
// set.
type DealRecord struct {
	ID              string
	Name            string
	CreatedAt       *time.Time // nil = unknown, treated as always visible
	StageTimestamps map[string]time.Time
	Attributes      map[string]string // pass-through fields (contact, campaign, ...)
}

// StageEvent is one point of a deal's reconstructed stage timeline.
type StageEvent struct {
	Stage     string
	EnteredAt time.Time
}

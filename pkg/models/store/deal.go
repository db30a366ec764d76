package store

import "time"

// DealRow is a raw extracted deal exactly as the CRM returned it: identity
// plus a flat bag of property strings. Timestamps stay unparsed here; the
// adapter layer owns normalization.
type DealRow struct {
	DealID     string
	CreatedAt  string
	UpdatedAt  string
	Properties map[string]string
}

// Snapshot is one persisted extraction batch.
type Snapshot struct {
	ID          string
	ExtractedAt time.Time
	Source      string
	DealCount   int
}

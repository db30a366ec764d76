package domain

import "time"

// MatrixRow is one deal's cells across the period axis. Cells holds one entry
// per period, oldest first; an empty string means the deal either did not
// exist yet or had not entered any stage by that period's end.
type MatrixRow struct {
	DealID     string
	DealName   string
	CreatedAt  *time.Time
	Attributes map[string]string
	Cells      []string
}

// Matrix is the deals x periods stage table for one snapshot and one request.
type Matrix struct {
	Periods []Period
	Rows    []MatrixRow
}

// StagnationRecord reports how long a deal has sat in its current stage.
// StagnantPeriods counts the trailing run of same-stage cells among the
// non-empty cells only; empties neither break nor extend the run.
type StagnationRecord struct {
	DealID          string
	DealName        string
	CurrentStage    string
	StagnantPeriods int
	TotalPeriods    int // non-empty cells in the row
}

// Snapshot identifies one immutable batch of extracted deal records.
type Snapshot struct {
	ID          string
	ExtractedAt time.Time
	Source      string
	DealCount   int
}

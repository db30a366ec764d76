package pipeline

import (
	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
)

// Stagnation derives per-deal stagnation records from a built matrix. Rows
// with no populated periods yield a record with an empty CurrentStage; the
// caller decides whether to exclude those from reporting. Threshold filtering
// is equally the caller's concern.
func Stagnation(m domain.Matrix) []domain.StagnationRecord {
	records := make([]domain.StagnationRecord, 0, len(m.Rows))
	for _, row := range m.Rows {
		records = append(records, StagnationForRow(row))
	}
	return records
}

// StagnationForRow computes one deal's stagnation run: the count of trailing
// same-stage occurrences among the row's non-empty cells. Empty cells are
// skipped outright, so a gap neither breaks nor extends the run.
func StagnationForRow(row domain.MatrixRow) domain.StagnationRecord {
	rec := domain.StagnationRecord{
		DealID:   row.DealID,
		DealName: row.DealName,
	}

	stages := make([]string, 0, len(row.Cells))
	for _, stage := range row.Cells {
		if stage != "" {
			stages = append(stages, stage)
		}
	}
	rec.TotalPeriods = len(stages)
	if len(stages) == 0 {
		return rec
	}

	rec.CurrentStage = stages[len(stages)-1]
	for i := len(stages) - 1; i >= 0 && stages[i] == rec.CurrentStage; i-- {
		rec.StagnantPeriods++
	}
	return rec
}

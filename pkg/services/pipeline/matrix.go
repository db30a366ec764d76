package pipeline

import (
	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
)

// BuildMatrix crosses deals with the period axis. Each cell holds the stage
// the deal occupied at that period's anchor date (the column's key instant):
// the most recent stage event with a timestamp at or before the anchor, or ""
// when the deal did not exist yet or had entered no stage. Building is pure
// and single-threaded; the deal set is an immutable snapshot for the duration
// of one call.
func BuildMatrix(catalog *StageCatalog, deals []domain.DealRecord, periods []domain.Period) domain.Matrix {
	m := domain.Matrix{
		Periods: periods,
		Rows:    make([]domain.MatrixRow, 0, len(deals)),
	}
	for _, deal := range deals {
		m.Rows = append(m.Rows, buildRow(catalog, deal, periods))
	}
	return m
}

// buildRow computes one deal's cells. A panic while reconstructing a single
// deal degrades that row to all-empty instead of aborting the whole build.
func buildRow(catalog *StageCatalog, deal domain.DealRecord, periods []domain.Period) (row domain.MatrixRow) {
	row = domain.MatrixRow{
		DealID:     deal.ID,
		DealName:   deal.Name,
		CreatedAt:  deal.CreatedAt,
		Attributes: deal.Attributes,
		Cells:      make([]string, len(periods)),
	}
	defer func() {
		if r := recover(); r != nil {
			row.Cells = make([]string, len(periods))
		}
	}()

	events := Progression(catalog, deal.StageTimestamps)

	for i, period := range periods {
		// Deals created after the boundary did not exist yet at that instant.
		// The check runs per period; an unknown creation time never filters a
		// deal out.
		if deal.CreatedAt != nil && deal.CreatedAt.After(period.Start) {
			continue
		}

		// Last event not after the boundary. Events are pre-sorted ascending,
		// so the walk stops at the first event past it; on boundary ties the
		// later event in tie-broken order wins as most recent.
		stage := ""
		for _, ev := range events {
			if ev.EnteredAt.After(period.Start) {
				break
			}
			stage = ev.Stage
		}
		row.Cells[i] = stage
	}
	return row
}

package adapters

import (
	"maps"
	"time"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/api"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

func MapMatrixDomainToApi(m domain.Matrix) api.Matrix {
	out := api.Matrix{
		Periods: make([]api.Period, 0, len(m.Periods)),
		Rows:    make([]api.MatrixRow, 0, len(m.Rows)),
	}
	for _, p := range m.Periods {
		out.Periods = append(out.Periods, api.Period{
			Key:   p.Key,
			Start: p.Start.Format(time.RFC3339),
			End:   p.End.Format(time.RFC3339),
		})
	}
	for _, row := range m.Rows {
		apiRow := api.MatrixRow{
			DealID:     row.DealID,
			DealName:   row.DealName,
			Attributes: maps.Clone(row.Attributes),
			Cells:      append([]string(nil), row.Cells...),
		}
		if row.CreatedAt != nil {
			apiRow.CreatedAt = row.CreatedAt.Format("2006-01-02")
		}
		out.Rows = append(out.Rows, apiRow)
	}
	return out
}

func MapStagnationDomainToApi(records []domain.StagnationRecord) []api.StagnationRecord {
	out := make([]api.StagnationRecord, 0, len(records))
	for _, r := range records {
		out = append(out, api.StagnationRecord{
			DealID:          r.DealID,
			DealName:        r.DealName,
			CurrentStage:    r.CurrentStage,
			StagnantPeriods: r.StagnantPeriods,
			TotalPeriods:    r.TotalPeriods,
		})
	}
	return out
}

func MapCatalogToApi(catalog *pipeline.StageCatalog) []api.Stage {
	stages := make([]api.Stage, 0, catalog.Len())
	for _, m := range catalog.Mappings() {
		stages = append(stages, api.Stage{Field: m.Field, Name: m.Stage})
	}
	return stages
}

func MapSnapshotDomainToApi(s domain.Snapshot) api.Snapshot {
	return api.Snapshot{
		ID:          s.ID,
		ExtractedAt: s.ExtractedAt.Format(time.RFC3339),
		Source:      s.Source,
		DealCount:   s.DealCount,
	}
}

package adapters

import (
	"time"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

// Pass-through properties carried onto the deal without entering matrix logic.
var attributeProperties = []string{
	"last_contact_name",
	"last_contact_campaign",
	"hs_deal_amount",
	"hs_deal_stage_probability",
	"hubspot_owner_id",
}

// MapStoreDealToDomain normalizes one raw extracted row. Malformed timestamps
// degrade to absent values and properties outside the catalog contribute no
// stage, so a dirty row still maps to a usable record.
func MapStoreDealToDomain(catalog *pipeline.StageCatalog, row store.DealRow) domain.DealRecord {
	deal := domain.DealRecord{
		ID:              row.DealID,
		Name:            row.Properties["dealname"],
		StageTimestamps: make(map[string]time.Time),
		Attributes:      make(map[string]string),
	}

	if createdAt, ok := pipeline.ParseTimestamp(row.CreatedAt); ok {
		deal.CreatedAt = &createdAt
	}

	for field, raw := range row.Properties {
		stage, ok := catalog.StageFor(field)
		if !ok {
			continue
		}
		enteredAt, ok := pipeline.ParseTimestamp(raw)
		if !ok {
			continue
		}
		// duplicate fields mapping to one display name: keep the earliest entry
		if existing, seen := deal.StageTimestamps[stage]; !seen || enteredAt.Before(existing) {
			deal.StageTimestamps[stage] = enteredAt
		}
	}

	for _, prop := range attributeProperties {
		if v := row.Properties[prop]; v != "" {
			deal.Attributes[prop] = v
		}
	}

	return deal
}

// MapStoreDealsToDomain maps a whole snapshot, isolating rows: one bad row
// never drops its neighbours.
func MapStoreDealsToDomain(catalog *pipeline.StageCatalog, rows []store.DealRow) []domain.DealRecord {
	deals := make([]domain.DealRecord, 0, len(rows))
	for _, row := range rows {
		deals = append(deals, MapStoreDealToDomain(catalog, row))
	}
	return deals
}

func MapStoreSnapshotToDomain(s store.Snapshot) domain.Snapshot {
	return domain.Snapshot{
		ID:          s.ID,
		ExtractedAt: s.ExtractedAt,
		Source:      s.Source,
		DealCount:   s.DealCount,
	}
}

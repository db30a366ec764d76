package hubspot

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

// Deal-level properties extracted alongside the catalog's stage fields.
var baseProperties = []string{
	"dealname",
	"hs_v2_date_entered_current_stage",
	"hs_deal_stage_probability",
	"hs_deal_amount",
	"hubspot_owner_id",
}

// ExtractionProperties is the full property list requested from the CRM for
// the given catalog: deal metadata first, then every stage timestamp field.
func ExtractionProperties(catalog *pipeline.StageCatalog) []string {
	return append(append([]string{}, baseProperties...), catalog.Fields()...)
}

// SnapshotSink persists one finished extraction batch.
type SnapshotSink interface {
	Persist(ctx context.Context, extractedAt time.Time, rows []store.DealRow) (store.Snapshot, error)
}

// Extractor runs the full extraction: pull all deals, enrich them with their
// last associated contact, and hand the batch to the sink.
type Extractor struct {
	client  *Client
	catalog *pipeline.StageCatalog
	sink    SnapshotSink
	now     func() time.Time
}

func NewExtractor(client *Client, catalog *pipeline.StageCatalog, sink SnapshotSink) *Extractor {
	return &Extractor{
		client:  client,
		catalog: catalog,
		sink:    sink,
		now:     time.Now,
	}
}

// Run extracts a fresh snapshot. Contact enrichment is best-effort: if the
// batch read fails, the deals keep empty contact attributes and the snapshot
// is still written.
func (e *Extractor) Run(ctx context.Context) (store.Snapshot, error) {
	logger := zerolog.Ctx(ctx)

	deals, err := e.client.ListAllDeals(ctx, ExtractionProperties(e.catalog))
	if err != nil {
		return store.Snapshot{}, err
	}
	logger.Info().Int("deals", len(deals)).Msg("extracted deals")

	contactIDs := lo.Uniq(lo.FlatMap(deals, func(d Deal, _ int) []string {
		return d.ContactIDs
	}))

	contacts := map[string]Contact{}
	if len(contactIDs) > 0 {
		contacts, err = e.client.BatchReadContacts(ctx, contactIDs)
		if err != nil {
			logger.Warn().Err(err).Msg("contact enrichment failed, continuing without contact attributes")
			contacts = map[string]Contact{}
		}
	}

	rows := make([]store.DealRow, 0, len(deals))
	for _, deal := range deals {
		row := deal.Row
		if len(deal.ContactIDs) > 0 {
			// the last association is the most recent contact
			last := contacts[deal.ContactIDs[len(deal.ContactIDs)-1]]
			row.Properties["last_contact_name"] = last.FullName
			row.Properties["last_contact_campaign"] = last.Campaign
		}
		rows = append(rows, row)
	}

	snap, err := e.sink.Persist(ctx, e.now().UTC(), rows)
	if err != nil {
		return store.Snapshot{}, err
	}

	logger.Info().
		Str("snapshot", snap.ID).
		Int("deals", snap.DealCount).
		Msg("snapshot persisted")
	return snap, nil
}

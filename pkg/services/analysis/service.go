package analysis

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/srivatsav-tech/hubspot-data/pkg/adapters"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

const (
	snapshotCacheKey = "latest-snapshot"
	snapshotCacheTTL = 30 * time.Second
)

// SnapshotSource resolves the most recent extraction batch. Implemented by
// the CSV and DuckDB snapshot stores.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (*store.Snapshot, []store.DealRow, error)
}

// Service orchestrates one analysis: load the latest snapshot, normalize and
// filter the deal set, build the matrix, and derive stagnation records. The
// snapshot is read through a short-lived cache so a burst of parameter edits
// does not reload it; any fresh extraction shows up after the TTL.
type Service struct {
	catalog *pipeline.StageCatalog
	source  SnapshotSource
	cache   *gocache.Cache
}

type cachedSnapshot struct {
	snapshot domain.Snapshot
	deals    []domain.DealRecord
}

func NewService(catalog *pipeline.StageCatalog, source SnapshotSource) *Service {
	return &Service{
		catalog: catalog,
		source:  source,
		cache:   gocache.New(snapshotCacheTTL, 2*snapshotCacheTTL),
	}
}

// Snapshot returns the current snapshot descriptor and its normalized deals.
func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, []domain.DealRecord, error) {
	if cached, ok := s.cache.Get(snapshotCacheKey); ok {
		cs := cached.(cachedSnapshot)
		return cs.snapshot, cs.deals, nil
	}

	snap, rows, err := s.source.LatestSnapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, nil, fmt.Errorf("load snapshot: %w", err)
	}

	deals := adapters.MapStoreDealsToDomain(s.catalog, rows)
	cs := cachedSnapshot{snapshot: adapters.MapStoreSnapshotToDomain(*snap), deals: deals}
	s.cache.Set(snapshotCacheKey, cs, gocache.DefaultExpiration)

	zerolog.Ctx(ctx).Debug().
		Str("snapshot", snap.ID).
		Int("deals", len(deals)).
		Msg("snapshot loaded")
	return cs.snapshot, cs.deals, nil
}

// BuildMatrix runs the full matrix computation for one request.
func (s *Service) BuildMatrix(ctx context.Context, req domain.AnalysisRequest) (*domain.Matrix, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, deals, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	deals = filterDeals(deals, req)
	periods := pipeline.Periods(req.From, req.To, req.Frequency)
	m := pipeline.BuildMatrix(s.catalog, deals, periods)
	m.Rows = filterRows(m.Rows, req)
	return &m, nil
}

// StagnationReport builds the matrix and reduces it to per-deal stagnation
// records. Deals with no populated period in range are excluded here, per the
// caller-filters contract of the analyzer.
func (s *Service) StagnationReport(ctx context.Context, req domain.AnalysisRequest) ([]domain.StagnationRecord, error) {
	m, err := s.BuildMatrix(ctx, req)
	if err != nil {
		return nil, err
	}

	records := pipeline.Stagnation(*m)
	records = lo.Filter(records, func(r domain.StagnationRecord, _ int) bool {
		return r.CurrentStage != ""
	})
	if req.StagnantOnly {
		records = lo.Filter(records, func(r domain.StagnationRecord, _ int) bool {
			return r.StagnantPeriods > req.StagnantThreshold
		})
	}
	return records, nil
}

// filterDeals applies the record-level filters before the build.
func filterDeals(deals []domain.DealRecord, req domain.AnalysisRequest) []domain.DealRecord {
	return lo.Filter(deals, func(d domain.DealRecord, _ int) bool {
		if req.CreatedFrom != nil || req.CreatedTo != nil {
			if d.CreatedAt == nil {
				return false
			}
			if req.CreatedFrom != nil && d.CreatedAt.Before(*req.CreatedFrom) {
				return false
			}
			if req.CreatedTo != nil && d.CreatedAt.After(*req.CreatedTo) {
				return false
			}
		}
		if len(req.DealNameFilter) > 0 && !lo.Contains(req.DealNameFilter, d.Name) {
			return false
		}
		if len(req.CampaignFilter) > 0 &&
			!lo.Contains(req.CampaignFilter, d.Attributes["last_contact_campaign"]) {
			return false
		}
		return true
	})
}

// filterRows applies the post-build filters that depend on computed cells.
func filterRows(rows []domain.MatrixRow, req domain.AnalysisRequest) []domain.MatrixRow {
	if len(req.StageFilter) > 0 {
		rows = lo.Filter(rows, func(row domain.MatrixRow, _ int) bool {
			return lo.Contains(req.StageFilter, pipeline.StagnationForRow(row).CurrentStage)
		})
	}
	if req.StagnantOnly {
		rows = lo.Filter(rows, func(row domain.MatrixRow, _ int) bool {
			rec := pipeline.StagnationForRow(row)
			return rec.CurrentStage != "" && rec.StagnantPeriods > req.StagnantThreshold
		})
	}
	return rows
}

// InvalidateSnapshot drops the cached snapshot, forcing the next analysis to
// reload from the source. Called after a refresh extraction.
func (s *Service) InvalidateSnapshot() {
	s.cache.Delete(snapshotCacheKey)
}

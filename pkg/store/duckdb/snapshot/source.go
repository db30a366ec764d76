package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/srivatsav-tech/hubspot-data/pkg/store/duckdb"
)

// Source adapts the snapshot store to the analysis service's snapshot source
// and to the extractor's sink. Writes run in one transaction so a failed
// extraction never leaves a snapshot row without its deals.
type Source struct {
	db    *sql.DB
	store Store
}

func NewSource(db *sql.DB, s Store) *Source {
	return &Source{db: db, store: s}
}

func (s *Source) LatestSnapshot(ctx context.Context) (*store.Snapshot, []store.DealRow, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.store.GetDeals(ctx, snap.ID)
	if err != nil {
		return nil, nil, err
	}
	return snap, rows, nil
}

func (s *Source) Persist(ctx context.Context, extractedAt time.Time, rows []store.DealRow) (store.Snapshot, error) {
	snap := store.Snapshot{
		ID:          extractedAt.UTC().Format("20060102_150405"),
		ExtractedAt: extractedAt.UTC(),
		Source:      "hubspot",
		DealCount:   len(rows),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("begin snapshot transaction: %w", err)
	}

	if err := s.store.Add(duckdb.WithTransaction(ctx, tx), snap, rows); err != nil {
		_ = tx.Rollback()
		return store.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.Snapshot{}, fmt.Errorf("commit snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/srivatsav-tech/hubspot-data/pkg/store/duckdb"
)

// Store versions extraction batches in DuckDB: one snapshots row per batch
// plus its raw deal rows. Reads always address an explicit snapshot id; the
// newest batch is resolved through Latest, never through ambient state.
type Store interface {
	Add(ctx context.Context, snap store.Snapshot, rows []store.DealRow) error
	List(ctx context.Context) ([]store.Snapshot, error)
	Latest(ctx context.Context) (*store.Snapshot, error)
	GetDeals(ctx context.Context, snapshotID string) ([]store.DealRow, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{db: db}, nil
}

func (s *snapshotStore) Add(ctx context.Context, snap store.Snapshot, rows []store.DealRow) error {
	tx := duckdb.GetTransaction(ctx)

	exec := func(query string, args ...any) (sql.Result, error) {
		if tx != nil {
			return tx.ExecContext(ctx, query, args...)
		}
		return s.db.ExecContext(ctx, query, args...)
	}

	_, err := exec(
		`INSERT INTO snapshots (id, extracted_at, source, deal_count) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.ExtractedAt, snap.Source, len(rows),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}

	query := `
		INSERT INTO deal_records (snapshot_id, deal_id, created_at, updated_at, properties)
		VALUES (?, ?, ?, ?, ?)`

	var stmt *sql.Stmt
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		properties, err := json.Marshal(row.Properties)
		if err != nil {
			return fmt.Errorf("marshal properties for deal %s: %w", row.DealID, err)
		}
		_, err = stmt.ExecContext(ctx, snap.ID, row.DealID, row.CreatedAt, row.UpdatedAt, string(properties))
		if err != nil {
			return fmt.Errorf("insert deal %s: %w", row.DealID, err)
		}
	}
	return nil
}

func (s *snapshotStore) List(ctx context.Context) ([]store.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, extracted_at, source, deal_count FROM snapshots ORDER BY extracted_at`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []store.Snapshot
	for rows.Next() {
		var snap store.Snapshot
		if err := rows.Scan(&snap.ID, &snap.ExtractedAt, &snap.Source, &snap.DealCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *snapshotStore) Latest(ctx context.Context) (*store.Snapshot, error) {
	var snap store.Snapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT id, extracted_at, source, deal_count FROM snapshots ORDER BY extracted_at DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.ExtractedAt, &snap.Source, &snap.DealCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no snapshots recorded; run an extraction first")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve latest snapshot: %w", err)
	}
	return &snap, nil
}

func (s *snapshotStore) GetDeals(ctx context.Context, snapshotID string) ([]store.DealRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT deal_id, created_at, updated_at, properties FROM deal_records WHERE snapshot_id = ?`,
		snapshotID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", snapshotID, err)
	}
	defer rows.Close()

	var deals []store.DealRow
	for rows.Next() {
		var row store.DealRow
		var properties string
		if err := rows.Scan(&row.DealID, &row.CreatedAt, &row.UpdatedAt, &properties); err != nil {
			return nil, fmt.Errorf("scan deal row: %w", err)
		}
		if properties != "" {
			if err := json.Unmarshal([]byte(properties), &row.Properties); err != nil {
				return nil, fmt.Errorf("unmarshal properties for deal %s: %w", row.DealID, err)
			}
		}
		deals = append(deals, row)
	}
	return deals, rows.Err()
}

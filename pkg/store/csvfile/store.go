package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
)

const (
	filePrefix      = "hubspot_deals_"
	fileSuffix      = ".csv"
	fileTimeLayout  = "20060102_150405"
	snapshotColumns = 3 // deal_id, created_at, updated_at lead every header
)

// Store persists extraction snapshots as one CSV file per batch under a
// single directory. The snapshot's identity is the extraction timestamp
// embedded in the file name, not ambient file metadata.
type Store struct {
	dir        string
	properties []string
}

// NewStore creates a CSV snapshot store writing files with the given property
// columns after the fixed deal_id/created_at/updated_at prefix.
func NewStore(dir string, properties []string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{dir: dir, properties: properties}, nil
}

// Write persists one snapshot and returns its descriptor.
func (s *Store) Write(extractedAt time.Time, rows []store.DealRow) (store.Snapshot, error) {
	extractedAt = extractedAt.UTC()
	id := extractedAt.Format(fileTimeLayout)
	path := filepath.Join(s.dir, filePrefix+id+fileSuffix)

	f, err := os.Create(path)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"deal_id", "created_at", "updated_at"}, s.properties...)
	if err := w.Write(header); err != nil {
		return store.Snapshot{}, fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, 0, len(header))
		record = append(record, row.DealID, row.CreatedAt, row.UpdatedAt)
		for _, prop := range s.properties {
			record = append(record, row.Properties[prop])
		}
		if err := w.Write(record); err != nil {
			return store.Snapshot{}, fmt.Errorf("write deal %s: %w", row.DealID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return store.Snapshot{}, fmt.Errorf("flush snapshot: %w", err)
	}

	return store.Snapshot{
		ID:          id,
		ExtractedAt: extractedAt,
		Source:      path,
		DealCount:   len(rows),
	}, nil
}

// Read loads one snapshot file back into raw rows. Columns beyond the fixed
// prefix land in Properties under their header names.
func (s *Store) Read(path string) ([]store.DealRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("snapshot %s has no header", path)
	}

	header := records[0]
	if len(header) < snapshotColumns {
		return nil, fmt.Errorf("snapshot %s header is missing the identity columns", path)
	}

	rows := make([]store.DealRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := store.DealRow{
			DealID:     record[0],
			CreatedAt:  record[1],
			UpdatedAt:  record[2],
			Properties: make(map[string]string, len(header)-snapshotColumns),
		}
		for i := snapshotColumns; i < len(header) && i < len(record); i++ {
			if record[i] != "" {
				row.Properties[header[i]] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// List returns the snapshots present in the directory, oldest first.
func (s *Store) List() ([]store.Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot directory: %w", err)
	}

	var snapshots []store.Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		extractedAt, err := time.Parse(fileTimeLayout, id)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, store.Snapshot{
			ID:          id,
			ExtractedAt: extractedAt.UTC(),
			Source:      filepath.Join(s.dir, name),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ExtractedAt.Before(snapshots[j].ExtractedAt)
	})
	return snapshots, nil
}

// Latest resolves the most recent snapshot and loads its rows.
func (s *Store) Latest() (*store.Snapshot, []store.DealRow, error) {
	snapshots, err := s.List()
	if err != nil {
		return nil, nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil, fmt.Errorf("no snapshots found in %s; run an extraction first", s.dir)
	}

	latest := snapshots[len(snapshots)-1]
	rows, err := s.Read(latest.Source)
	if err != nil {
		return nil, nil, err
	}
	latest.DealCount = len(rows)
	return &latest, rows, nil
}

// LatestSnapshot implements the analysis snapshot source over CSV files.
func (s *Store) LatestSnapshot(_ context.Context) (*store.Snapshot, []store.DealRow, error) {
	return s.Latest()
}

// Persist implements the extraction snapshot sink.
func (s *Store) Persist(_ context.Context, extractedAt time.Time, rows []store.DealRow) (store.Snapshot, error) {
	return s.Write(extractedAt, rows)
}

package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Add(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	snap := store.Snapshot{
		ID:          "20240301_000000",
		ExtractedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Source:      "hubspot",
	}
	rows := []store.DealRow{
		{DealID: "1", CreatedAt: "2024-01-01T00:00:00Z", Properties: map[string]string{"dealname": "Acme"}},
		{DealID: "2", CreatedAt: "2024-01-10T00:00:00Z", Properties: map[string]string{"dealname": "Bolt"}},
	}

	mock.ExpectExec(`INSERT INTO snapshots`).
		WithArgs(snap.ID, snap.ExtractedAt, snap.Source, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`INSERT INTO deal_records`)
	mock.ExpectExec(`INSERT INTO deal_records`).
		WithArgs(snap.ID, "1", "2024-01-01T00:00:00Z", "", `{"dealname":"Acme"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO deal_records`).
		WithArgs(snap.ID, "2", "2024-01-10T00:00:00Z", "", `{"dealname":"Bolt"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.Add(context.Background(), snap, rows)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Latest(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	extractedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, extracted_at, source, deal_count FROM snapshots ORDER BY extracted_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "extracted_at", "source", "deal_count"}).
			AddRow("20240301_000000", extractedAt, "hubspot", 2))

	snap, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20240301_000000", snap.ID)
	assert.Equal(t, 2, snap.DealCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LatestNoSnapshots(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, extracted_at, source, deal_count FROM snapshots`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "extracted_at", "source", "deal_count"}))

	_, err = s.Latest(context.Background())
	assert.Error(t, err)
}

func TestStore_GetDeals(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT deal_id, created_at, updated_at, properties FROM deal_records`).
		WithArgs("20240301_000000").
		WillReturnRows(sqlmock.NewRows([]string{"deal_id", "created_at", "updated_at", "properties"}).
			AddRow("1", "2024-01-01T00:00:00Z", "", `{"dealname":"Acme","hs_v2_date_entered_x":"2024-01-05T00:00:00Z"}`))

	deals, err := s.GetDeals(context.Background(), "20240301_000000")
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "Acme", deals[0].Properties["dealname"])
	assert.Equal(t, "2024-01-05T00:00:00Z", deals[0].Properties["hs_v2_date_entered_x"])
}

func TestSource_PersistCommitsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)
	source := NewSource(db, s)

	extractedAt := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)
	rows := []store.DealRow{
		{DealID: "1", CreatedAt: "2024-01-01T00:00:00Z", Properties: map[string]string{"dealname": "Acme"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO snapshots`).
		WithArgs("20240302_103000", extractedAt, "hubspot", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`INSERT INTO deal_records`)
	mock.ExpectExec(`INSERT INTO deal_records`).
		WithArgs("20240302_103000", "1", "2024-01-01T00:00:00Z", "", `{"dealname":"Acme"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	snap, err := source.Persist(context.Background(), extractedAt, rows)
	require.NoError(t, err)
	assert.Equal(t, "20240302_103000", snap.ID)
	assert.Equal(t, 1, snap.DealCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSource_PersistRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)
	source := NewSource(db, s)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO snapshots`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = source.Persist(context.Background(), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

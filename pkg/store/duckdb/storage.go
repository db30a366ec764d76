package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const SnapshotSchema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id VARCHAR NOT NULL PRIMARY KEY,
		extracted_at TIMESTAMP NOT NULL,
		source VARCHAR,
		deal_count INTEGER NOT NULL DEFAULT 0
	);
`

const DealRecordSchema = `
	CREATE TABLE IF NOT EXISTS deal_records (
		snapshot_id VARCHAR NOT NULL,
		deal_id VARCHAR NOT NULL,
		created_at VARCHAR,
		updated_at VARCHAR,
		properties JSON,
		PRIMARY KEY (snapshot_id, deal_id)
	);
`

var bootQueries = []string{
	SnapshotSchema,
	DealRecordSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}

package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const RawProfilesSchema = `
	CREATE TABLE IF NOT EXISTS raw_profiles (
		site_id VARCHAR NOT NULL PRIMARY KEY,
		data JSON NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
`

const SiteProfilesSchema = `
	CREATE TABLE IF NOT EXISTS site_profiles (
		site_id VARCHAR NOT NULL PRIMARY KEY,
		technical INTEGER NOT NULL,
		semantic INTEGER NOT NULL,
		link_authority INTEGER NOT NULL,
		schema INTEGER NOT NULL,
		monetization INTEGER NOT NULL,
		trust_signals INTEGER NOT NULL,
		freshness INTEGER NOT NULL,
		shareability INTEGER NOT NULL,
		experience INTEGER NOT NULL,
		global INTEGER NOT NULL,
		missing_inputs JSON,
		remediations JSON,
		insight JSON,
		vector JSON,
		provider VARCHAR,
		degraded BOOLEAN NOT NULL DEFAULT FALSE,
		keywords JSON,
		checked_at TIMESTAMP NOT NULL
	);
`

const AccountsSchema = `
	CREATE TABLE IF NOT EXISTS credit_accounts (
		id VARCHAR NOT NULL PRIMARY KEY,
		role VARCHAR NOT NULL,
		balance INTEGER NOT NULL CHECK (balance >= 0)
	);
`

const LedgerSchema = `
	CREATE TABLE IF NOT EXISTS credit_ledger (
		id VARCHAR NOT NULL PRIMARY KEY,
		account_id VARCHAR NOT NULL,
		amount INTEGER NOT NULL,
		type VARCHAR NOT NULL,
		description VARCHAR,
		created_at TIMESTAMP NOT NULL
	);
`

var bootQueries = []string{
	RawProfilesSchema,
	SiteProfilesSchema,
	AccountsSchema,
	LedgerSchema,
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

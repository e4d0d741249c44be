package rawdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seo-tools/site-atlas/pkg/store/duckdb"
)

// Store persists the per-site raw-data blob. The blob is written as a
// single row so that the charge orchestrator's debit + merge + ledger
// append stays a plain SQL transaction.
type Store interface {
	Get(ctx context.Context, siteID string) ([]byte, bool, error)
	Put(ctx context.Context, siteID string, data []byte, updatedAt time.Time) error
	ListSiteIDs(ctx context.Context) ([]string, error)
}

type rawStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &rawStore{db: db}, nil
}

func (s *rawStore) Get(ctx context.Context, siteID string) ([]byte, bool, error) {
	query := `SELECT data FROM raw_profiles WHERE site_id = ?`

	var row *sql.Row
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		row = tx.QueryRowContext(ctx, query, siteID)
	} else {
		row = s.db.QueryRowContext(ctx, query, siteID)
	}

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get raw profile: %w", err)
	}
	return data, true, nil
}

func (s *rawStore) Put(ctx context.Context, siteID string, data []byte, updatedAt time.Time) error {
	query := `
		INSERT INTO raw_profiles (site_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (site_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	var err error
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		_, err = tx.ExecContext(ctx, query, siteID, data, updatedAt)
	} else {
		_, err = s.db.ExecContext(ctx, query, siteID, data, updatedAt)
	}
	if err != nil {
		return fmt.Errorf("put raw profile: %w", err)
	}
	return nil
}

func (s *rawStore) ListSiteIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT site_id FROM raw_profiles ORDER BY site_id`)
	if err != nil {
		return nil, fmt.Errorf("list raw profiles: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

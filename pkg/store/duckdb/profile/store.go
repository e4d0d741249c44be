package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seo-tools/site-atlas/pkg/models/store"
	"github.com/seo-tools/site-atlas/pkg/store/duckdb"
)

// Store persists derived site state: the nine dimension scores plus
// the global score, the remediation list, the insight object, and the
// embedding vector with its keyword list. One row per site.
type Store interface {
	UpsertScores(ctx context.Context, p store.SiteProfile) error
	UpsertEmbedding(ctx context.Context, siteID string, vector []byte, provider string, degraded bool, keywords []string) error
	Get(ctx context.Context, siteID string) (store.SiteProfile, bool, error)
	ListEmbeddings(ctx context.Context) ([]store.EmbeddingRecord, error)
}

type profileStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &profileStore{db: db}, nil
}

// UpsertScores replaces the scoring columns wholesale and leaves the
// embedding columns untouched. Score sets are recomputed, never
// partially patched.
func (s *profileStore) UpsertScores(ctx context.Context, p store.SiteProfile) error {
	missing, err := json.Marshal(p.MissingInputs)
	if err != nil {
		return fmt.Errorf("marshal missing inputs: %w", err)
	}
	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	query := `
		INSERT INTO site_profiles (
			site_id, technical, semantic, link_authority, schema, monetization,
			trust_signals, freshness, shareability, experience, global,
			missing_inputs, remediations, insight, keywords, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (site_id) DO UPDATE SET
			technical = excluded.technical,
			semantic = excluded.semantic,
			link_authority = excluded.link_authority,
			schema = excluded.schema,
			monetization = excluded.monetization,
			trust_signals = excluded.trust_signals,
			freshness = excluded.freshness,
			shareability = excluded.shareability,
			experience = excluded.experience,
			global = excluded.global,
			missing_inputs = excluded.missing_inputs,
			remediations = excluded.remediations,
			insight = excluded.insight,
			keywords = excluded.keywords,
			checked_at = excluded.checked_at
	`
	_, err = s.exec(ctx, query,
		p.SiteID, p.Technical, p.Semantic, p.LinkAuthority, p.Schema, p.Monetization,
		p.TrustSignals, p.Freshness, p.Shareability, p.Experience, p.Global,
		missing, nullableJSON(p.Remediations), nullableJSON(p.Insight), keywords, p.CheckedAt)
	if err != nil {
		return fmt.Errorf("upsert scores: %w", err)
	}
	return nil
}

func (s *profileStore) UpsertEmbedding(
	ctx context.Context,
	siteID string,
	vector []byte,
	provider string,
	degraded bool,
	keywords []string,
) error {
	kw, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	query := `
		UPDATE site_profiles
		SET vector = ?, provider = ?, degraded = ?, keywords = ?
		WHERE site_id = ?
	`
	res, err := s.exec(ctx, query, vector, provider, degraded, kw, siteID)
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("upsert embedding: no profile row for site %s", siteID)
	}
	return nil
}

func (s *profileStore) Get(ctx context.Context, siteID string) (store.SiteProfile, bool, error) {
	query := `
		SELECT site_id, technical, semantic, link_authority, schema, monetization,
			trust_signals, freshness, shareability, experience, global,
			missing_inputs, remediations, insight, vector, provider, degraded, keywords, checked_at
		FROM site_profiles
		WHERE site_id = ?
	`
	row := s.db.QueryRowContext(ctx, query, siteID)

	var (
		p           store.SiteProfile
		missingRaw  []byte
		keywordsRaw []byte
		provider    sql.NullString
		checkedAt   time.Time
	)
	err := row.Scan(
		&p.SiteID, &p.Technical, &p.Semantic, &p.LinkAuthority, &p.Schema, &p.Monetization,
		&p.TrustSignals, &p.Freshness, &p.Shareability, &p.Experience, &p.Global,
		&missingRaw, &p.Remediations, &p.Insight, &p.Vector, &provider, &p.Degraded, &keywordsRaw, &checkedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.SiteProfile{}, false, nil
		}
		return store.SiteProfile{}, false, fmt.Errorf("get profile: %w", err)
	}

	p.Provider = provider.String
	p.CheckedAt = checkedAt
	if len(missingRaw) > 0 {
		_ = json.Unmarshal(missingRaw, &p.MissingInputs)
	}
	if len(keywordsRaw) > 0 {
		_ = json.Unmarshal(keywordsRaw, &p.Keywords)
	}
	return p, true, nil
}

func (s *profileStore) ListEmbeddings(ctx context.Context) ([]store.EmbeddingRecord, error) {
	query := `
		SELECT site_id, vector, provider, degraded, keywords, checked_at
		FROM site_profiles
		WHERE vector IS NOT NULL
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	defer rows.Close()

	records := make([]store.EmbeddingRecord, 0)
	for rows.Next() {
		var (
			rec         store.EmbeddingRecord
			provider    sql.NullString
			keywordsRaw []byte
		)
		if err := rows.Scan(&rec.SiteID, &rec.Vector, &provider, &rec.Degraded, &keywordsRaw, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Provider = provider.String
		if len(keywordsRaw) > 0 {
			_ = json.Unmarshal(keywordsRaw, &rec.Keywords)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *profileStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

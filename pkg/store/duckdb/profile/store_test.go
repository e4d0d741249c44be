package profile

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/seo-tools/site-atlas/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(db)
	require.NoError(t, err)
	return s, mock
}

func TestUpsertScores_WritesAllScoreColumns(t *testing.T) {
	s, mock := newTestStore(t)
	checkedAt := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO site_profiles").
		WithArgs("example.com", 80, 70, 60, 50, 40, 30, 20, 10, 90, 55,
			sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg(), checkedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertScores(context.Background(), store.SiteProfile{
		SiteID:        "example.com",
		Technical:     80,
		Semantic:      70,
		LinkAuthority: 60,
		Schema:        50,
		Monetization:  40,
		TrustSignals:  30,
		Freshness:     20,
		Shareability:  10,
		Experience:    90,
		Global:        55,
		MissingInputs: []string{"serp"},
		Remediations:  []byte(`[]`),
		Keywords:      []string{"seo"},
		CheckedAt:     checkedAt,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEmbedding_RequiresExistingProfileRow(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec("UPDATE site_profiles").
		WithArgs([]byte(`[0.1]`), "http-embedding", false, sqlmock.AnyArg(), "example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpsertEmbedding(context.Background(), "example.com", []byte(`[0.1]`), "http-embedding", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profile row")
}

func TestGet_Missing(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery("SELECT site_id, technical").
		WithArgs("ghost.example").
		WillReturnError(sql.ErrNoRows)

	_, found, err := s.Get(context.Background(), "ghost.example")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListEmbeddings(t *testing.T) {
	s, mock := newTestStore(t)
	checkedAt := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT site_id, vector, provider, degraded, keywords, checked_at").
		WillReturnRows(sqlmock.NewRows([]string{"site_id", "vector", "provider", "degraded", "keywords", "checked_at"}).
			AddRow("a.example", []byte(`[1,0]`), "http-embedding", false, []byte(`["seo"]`), checkedAt).
			AddRow("b.example", []byte(`[0,1]`), nil, true, nil, checkedAt))

	records, err := s.ListEmbeddings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a.example", records[0].SiteID)
	assert.Equal(t, []string{"seo"}, records[0].Keywords)
	assert.True(t, records[1].Degraded)
	assert.Empty(t, records[1].Provider)
}

package charge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/services/sources"
	creditstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/credit"
	rawstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/rawdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetchedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeAdapter struct {
	payload *sources.RawPayload
	err     error
	calls   int
}

func (f *fakeAdapter) Fetch(_ context.Context, _, _ string) (*sources.RawPayload, error) {
	f.calls++
	return f.payload, f.err
}

func keywordsPayload() *sources.RawPayload {
	return &sources.RawPayload{
		Source:    sources.SourceKeywords,
		Region:    "en-US",
		FetchedAt: fetchedAt,
		Data:      []byte(`{"keywords":[]}`),
	}
}

func newTestService(t *testing.T, adapter sources.Adapter) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	credit, err := creditstore.NewStore(db)
	require.NoError(t, err)
	raw, err := rawstore.NewStore(db)
	require.NoError(t, err)

	registry := sources.NewRegistry()
	if adapter != nil {
		require.NoError(t, registry.Register(sources.SourceKeywords, adapter))
	}

	service, err := NewService(db, credit, raw, registry, Settings{})
	require.NoError(t, err)
	return service, mock
}

func expectAccount(mock sqlmock.Sqlmock, role string, balance int) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, role, balance FROM credit_accounts WHERE id = ?`)).
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "balance"}).
			AddRow("acct-1", role, balance))
}

func TestChargeAndFetch_Success(t *testing.T) {
	adapter := &fakeAdapter{payload: keywordsPayload()}
	service, mock := newTestService(t, adapter)

	expectAccount(mock, "advertiser", 5)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM raw_profiles WHERE site_id = ?`)).
		WithArgs("site-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO raw_profiles").
		WithArgs("site-1", sqlmock.AnyArg(), fetchedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_accounts SET balance = balance - ? WHERE id = ? AND balance >= ?`)).
		WithArgs(1, "acct-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credit_ledger").
		WithArgs(sqlmock.AnyArg(), "acct-1", -1, domain.LedgerTypeFetch, sqlmock.AnyArg(), fetchedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "en-US")

	require.NoError(t, err)
	assert.Equal(t, 1, adapter.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_UnknownSource(t *testing.T) {
	service, mock := newTestService(t, &fakeAdapter{})

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", "tarot", "en-US")

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_RegionRequired(t *testing.T) {
	service, mock := newTestService(t, &fakeAdapter{})

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "")

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "region", validation.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_ViewerCannotSpend(t *testing.T) {
	adapter := &fakeAdapter{payload: keywordsPayload()}
	service, mock := newTestService(t, adapter)

	expectAccount(mock, "viewer", 100)

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "en-US")

	var authz *domain.AuthorizationError
	require.ErrorAs(t, err, &authz)
	assert.NotErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Zero(t, adapter.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_InsufficientBalanceBeforeFetch(t *testing.T) {
	adapter := &fakeAdapter{payload: keywordsPayload()}
	service, mock := newTestService(t, adapter)

	expectAccount(mock, "advertiser", 0)

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "en-US")

	var authz *domain.AuthorizationError
	require.ErrorAs(t, err, &authz)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// The adapter is never invoked: the balance gate precedes the
	// network call, so a failed fetch can never follow a reservation.
	assert.Zero(t, adapter.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_UpstreamFailureLeavesBalanceUntouched(t *testing.T) {
	adapter := &fakeAdapter{err: fmt.Errorf("provider returned 503")}
	service, mock := newTestService(t, adapter)

	expectAccount(mock, "advertiser", 5)
	// No ExpectBegin: a failed fetch must not open a transaction.

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "en-US")

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, sources.SourceKeywords, upstream.Source)
	assert.Equal(t, 1, adapter.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_EmptyPayloadIsUpstreamFailure(t *testing.T) {
	adapter := &fakeAdapter{payload: &sources.RawPayload{Source: sources.SourceKeywords, Region: "en-US"}}
	service, mock := newTestService(t, adapter)

	expectAccount(mock, "advertiser", 5)

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "en-US")

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_ConcurrentDebitConflictRollsBack(t *testing.T) {
	adapter := &fakeAdapter{payload: keywordsPayload()}
	service, mock := newTestService(t, adapter)

	expectAccount(mock, "advertiser", 1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM raw_profiles WHERE site_id = ?`)).
		WithArgs("site-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO raw_profiles").
		WithArgs("site-1", sqlmock.AnyArg(), fetchedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// A concurrent debit drained the balance after the pre-check; the
	// guarded UPDATE matches no row.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_accounts SET balance = balance - ? WHERE id = ? AND balance >= ?`)).
		WithArgs(1, "acct-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "en-US")

	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_LedgerFailureRollsBack(t *testing.T) {
	adapter := &fakeAdapter{payload: keywordsPayload()}
	service, mock := newTestService(t, adapter)

	expectAccount(mock, "advertiser", 5)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM raw_profiles WHERE site_id = ?`)).
		WithArgs("site-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO raw_profiles").
		WithArgs("site-1", sqlmock.AnyArg(), fetchedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_accounts SET balance = balance - ? WHERE id = ? AND balance >= ?`)).
		WithArgs(1, "acct-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credit_ledger").
		WithArgs(sqlmock.AnyArg(), "acct-1", -1, domain.LedgerTypeFetch, sqlmock.AnyArg(), fetchedAt).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := service.ChargeAndFetch(context.Background(), "acct-1", "site-1", sources.SourceKeywords, "en-US")

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeAndFetch_MissingAccount(t *testing.T) {
	service, mock := newTestService(t, &fakeAdapter{})

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, role, balance FROM credit_accounts WHERE id = ?`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	err := service.ChargeAndFetch(context.Background(), "ghost", "site-1", sources.SourceKeywords, "en-US")

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "accountId", validation.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

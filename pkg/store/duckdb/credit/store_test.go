package credit

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/seo-tools/site-atlas/pkg/models/store"
	"github.com/seo-tools/site-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(db)
	require.NoError(t, err)
	return s, mock, db
}

func TestGetAccount_Found(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, role, balance FROM credit_accounts WHERE id = ?`)).
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "balance"}).
			AddRow("acct-1", "advertiser", 7))

	account, found, err := s.GetAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, store.Account{ID: "acct-1", Role: "advertiser", Balance: 7}, account)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccount_Missing(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, role, balance FROM credit_accounts WHERE id = ?`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, found, err := s.GetAccount(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDebit_GuardedByBalancePredicate(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_accounts SET balance = balance - ? WHERE id = ? AND balance >= ?`)).
		WithArgs(3, "acct-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Debit(context.Background(), "acct-1", 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_NoMatchingRowIsConflict(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_accounts SET balance = balance - ?`)).
		WithArgs(5, "acct-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Debit(context.Background(), "acct-1", 5)
	assert.ErrorIs(t, err, ErrBalanceConflict)
}

func TestDebit_RejectsNonPositiveAmount(t *testing.T) {
	s, _, _ := newTestStore(t)

	assert.Error(t, s.Debit(context.Background(), "acct-1", 0))
	assert.Error(t, s.Debit(context.Background(), "acct-1", -2))
}

func TestDebit_JoinsAmbientTransaction(t *testing.T) {
	s, mock, db := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_accounts SET balance = balance - ?`)).
		WithArgs(1, "acct-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	ctx := duckdb.WithTransaction(context.Background(), tx)
	require.NoError(t, s.Debit(ctx, "acct-1", 1))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAndGetLedger(t *testing.T) {
	s, mock, _ := newTestStore(t)
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO credit_ledger").
		WithArgs("entry-1", "acct-1", -2, "fetch", "serp fetch for example.com (en-US)", createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Append(context.Background(), store.LedgerEntry{
		ID:          "entry-1",
		AccountID:   "acct-1",
		Amount:      -2,
		Type:        "fetch",
		Description: "serp fetch for example.com (en-US)",
		CreatedAt:   createdAt,
	}))

	mock.ExpectQuery("SELECT id, account_id, amount, type, description, created_at").
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "amount", "type", "description", "created_at"}).
			AddRow("entry-1", "acct-1", -2, "fetch", "serp fetch for example.com (en-US)", createdAt))

	entries, err := s.GetLedger(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, -2, entries[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopUp(t *testing.T) {
	s, mock, _ := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_accounts SET balance = balance + ? WHERE id = ?`)).
		WithArgs(10, "acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.TopUp(context.Background(), "acct-1", 10))
	assert.Error(t, s.TopUp(context.Background(), "acct-1", 0))
}

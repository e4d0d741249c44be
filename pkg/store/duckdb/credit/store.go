package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seo-tools/site-atlas/pkg/models/store"
	"github.com/seo-tools/site-atlas/pkg/store/duckdb"
)

// ErrBalanceConflict is returned when a debit would take the balance
// below zero. The guard lives in the UPDATE predicate, so concurrent
// debits against one account are serialized by the database rather
// than by application-level locking.
var ErrBalanceConflict = errors.New("balance would go negative")

// Store manages credit accounts and the append-only transaction
// ledger. Debit and Append join the ambient transaction when one is
// attached to the context.
type Store interface {
	CreateAccount(ctx context.Context, account store.Account) error
	GetAccount(ctx context.Context, id string) (store.Account, bool, error)
	Debit(ctx context.Context, accountID string, amount int) error
	TopUp(ctx context.Context, accountID string, amount int) error
	Append(ctx context.Context, entry store.LedgerEntry) error
	GetLedger(ctx context.Context, accountID string) ([]store.LedgerEntry, error)
}

type creditStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &creditStore{db: db}, nil
}

func (s *creditStore) CreateAccount(ctx context.Context, account store.Account) error {
	query := `INSERT INTO credit_accounts (id, role, balance) VALUES (?, ?, ?)`
	_, err := s.exec(ctx, query, account.ID, account.Role, account.Balance)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *creditStore) GetAccount(ctx context.Context, id string) (store.Account, bool, error) {
	query := `SELECT id, role, balance FROM credit_accounts WHERE id = ?`

	var row *sql.Row
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		row = tx.QueryRowContext(ctx, query, id)
	} else {
		row = s.db.QueryRowContext(ctx, query, id)
	}

	var account store.Account
	if err := row.Scan(&account.ID, &account.Role, &account.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Account{}, false, nil
		}
		return store.Account{}, false, fmt.Errorf("get account: %w", err)
	}
	return account, true, nil
}

func (s *creditStore) Debit(ctx context.Context, accountID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	query := `UPDATE credit_accounts SET balance = balance - ? WHERE id = ? AND balance >= ?`
	res, err := s.exec(ctx, query, amount, accountID, amount)
	if err != nil {
		return fmt.Errorf("debit account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit account: %w", err)
	}
	if affected == 0 {
		return ErrBalanceConflict
	}
	return nil
}

func (s *creditStore) TopUp(ctx context.Context, accountID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("top-up amount must be positive, got %d", amount)
	}
	query := `UPDATE credit_accounts SET balance = balance + ? WHERE id = ?`
	_, err := s.exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("top up account: %w", err)
	}
	return nil
}

func (s *creditStore) Append(ctx context.Context, entry store.LedgerEntry) error {
	query := `
		INSERT INTO credit_ledger (id, account_id, amount, type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.exec(ctx, query,
		entry.ID, entry.AccountID, entry.Amount, entry.Type, entry.Description, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (s *creditStore) GetLedger(ctx context.Context, accountID string) ([]store.LedgerEntry, error) {
	query := `
		SELECT id, account_id, amount, type, description, created_at
		FROM credit_ledger
		WHERE account_id = ?
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	entries := make([]store.LedgerEntry, 0)
	for rows.Next() {
		var (
			entry       store.LedgerEntry
			description sql.NullString
			createdAt   time.Time
		)
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Amount, &entry.Type, &description, &createdAt); err != nil {
			return nil, err
		}
		entry.Description = description.String
		entry.CreatedAt = createdAt
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *creditStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

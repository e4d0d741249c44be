package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAdvertiser Role = "advertiser"
	RoleViewer     Role = "viewer"
)

// CanSpend reports whether the role is permitted to consume credit.
func (r Role) CanSpend() bool {
	return r == RoleAdmin || r == RoleAdvertiser
}

// CreditAccount gates paid fetches. Balance is mutated only inside the
// same transaction as the raw-data write and the ledger append, and
// never goes negative.
type CreditAccount struct {
	ID      string
	Role    Role
	Balance int
}

// LedgerEntry is one append-only transaction record. Amount is
// negative for debits, positive for top-ups. Entries are never
// mutated or deleted.
type LedgerEntry struct {
	ID          string
	AccountID   string
	Amount      int
	Type        string
	Description string
	CreatedAt   time.Time
}

const (
	LedgerTypeFetch = "fetch"
	LedgerTypeTopUp = "topup"
)

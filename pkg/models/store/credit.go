package store

import "time"

type Account struct {
	ID      string
	Role    string
	Balance int
}

type LedgerEntry struct {
	ID          string
	AccountID   string
	Amount      int
	Type        string
	Description string
	CreatedAt   time.Time
}

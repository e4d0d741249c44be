package api

import "time"

type Account struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Balance int    `json:"balance"`
}

type LedgerEntry struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Amount      int       `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

package adapters

import (
	"github.com/seo-tools/site-atlas/pkg/models/api"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/models/store"
)

func MapAccountStoreToDomain(a store.Account) domain.CreditAccount {
	return domain.CreditAccount{
		ID:      a.ID,
		Role:    domain.Role(a.Role),
		Balance: a.Balance,
	}
}

func MapAccountDomainToApi(a domain.CreditAccount) api.Account {
	return api.Account{
		ID:      a.ID,
		Role:    string(a.Role),
		Balance: a.Balance,
	}
}

func MapLedgerEntryStoreToDomain(e store.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Amount:      e.Amount,
		Type:        e.Type,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func MapLedgerEntryDomainToApi(e domain.LedgerEntry) api.LedgerEntry {
	return api.LedgerEntry{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Amount:      e.Amount,
		Type:        e.Type,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

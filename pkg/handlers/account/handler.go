package account

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/adapters"
	"github.com/seo-tools/site-atlas/pkg/models/api"
	creditstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/credit"
)

type Handler struct {
	credit creditstore.Store
}

func NewHandler(credit creditstore.Store) *Handler {
	return &Handler{credit: credit}
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	accountID := chi.URLParam(r, "account")

	record, found, err := h.credit.GetAccount(ctx, accountID)
	if err != nil {
		http.Error(w, "failed to load account", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}

	account := adapters.MapAccountStoreToDomain(record)
	if err := json.NewEncoder(w).Encode(adapters.MapAccountDomainToApi(account)); err != nil {
		logger.Error().Err(err).Str("account", accountID).Msg("failed to encode account")
	}
}

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	accountID := chi.URLParam(r, "account")

	entries, err := h.credit.GetLedger(ctx, accountID)
	if err != nil {
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}

	response := make([]api.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		response = append(response, adapters.MapLedgerEntryDomainToApi(adapters.MapLedgerEntryStoreToDomain(entry)))
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Str("account", accountID).Msg("failed to encode ledger")
	}
}

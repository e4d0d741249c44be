package site

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/adapters"
	"github.com/seo-tools/site-atlas/pkg/models/api"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/services/charge"
	"github.com/seo-tools/site-atlas/pkg/services/embedding"
	"github.com/seo-tools/site-atlas/pkg/services/reprocess"
	"github.com/seo-tools/site-atlas/pkg/services/sources"
	profilestore "github.com/seo-tools/site-atlas/pkg/store/duckdb/profile"
	rawstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/rawdata"
)

const defaultSimilarLimit = 10

type Handler struct {
	charger   *charge.Service
	processor *reprocess.Service
	searcher  *embedding.Searcher
	profiles  profilestore.Store
	raw       rawstore.Store
}

func NewHandler(
	charger *charge.Service,
	processor *reprocess.Service,
	searcher *embedding.Searcher,
	profiles profilestore.Store,
	raw rawstore.Store,
) *Handler {
	return &Handler{
		charger:   charger,
		processor: processor,
		searcher:  searcher,
		profiles:  profiles,
		raw:       raw,
	}
}

// RefreshSource runs one paid fetch for a site. The acting account is
// passed explicitly; there is no ambient session state.
func (h *Handler) RefreshSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := chi.URLParam(r, "site")
	source := chi.URLParam(r, "source")
	region := r.URL.Query().Get("region")
	accountID := r.Header.Get("X-Account-Id")

	err := h.charger.ChargeAndFetch(ctx, accountID, siteID, source, region)
	writeResult(ctx, w, err, "fetch committed")
}

// Reprocess recomputes scores, insight, and embedding from the raw
// store.
func (h *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := chi.URLParam(r, "site")

	err := h.processor.Run(ctx, siteID)
	writeResult(ctx, w, err, "reprocessed")
}

// GetProfile returns the derived state for one site.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	siteID := chi.URLParam(r, "site")

	record, found, err := h.profiles.Get(ctx, siteID)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "site not found", http.StatusNotFound)
		return
	}

	site := adapters.MapSiteProfileStoreToDomain(record)
	if err := json.NewEncoder(w).Encode(adapters.MapSiteDomainToApi(site)); err != nil {
		logger.Error().Err(err).Str("site", siteID).Msg("failed to encode site profile")
	}
}

// Similar answers a nearest-neighbor query against the stored
// embeddings, excluding the site itself.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	siteID := chi.URLParam(r, "site")

	k := defaultSimilarLimit
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid 'k' parameter", http.StatusBadRequest)
			return
		}
		k = parsed
	}
	includeDegraded := r.URL.Query().Get("include_degraded") == "true"

	results, err := h.searcher.SearchBySite(ctx, siteID, k, embedding.SearchOptions{
		IncludeDegraded: includeDegraded,
	})
	if err != nil {
		status, message := statusFromError(err)
		http.Error(w, message, status)
		return
	}

	if err := json.NewEncoder(w).Encode(adapters.MapSimilarityDomainToApi(results)); err != nil {
		logger.Error().Err(err).Str("site", siteID).Msg("failed to encode similarity results")
	}
}

// ListSites returns the IDs of every site with raw data.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	ids, err := h.raw.ListSiteIDs(ctx)
	if err != nil {
		http.Error(w, "failed to list sites", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(ids); err != nil {
		logger.Error().Err(err).Msg("failed to encode site list")
	}
}

// ListSources returns the paid-operation catalog.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	type sourceInfo struct {
		Name         string `json:"name"`
		Cost         int    `json:"cost"`
		RegionScoped bool   `json:"region_scoped"`
	}
	catalog := make([]sourceInfo, 0)
	for _, op := range sources.Catalog() {
		catalog = append(catalog, sourceInfo{Name: op.Name, Cost: op.Cost, RegionScoped: op.RegionScoped})
	}

	if err := json.NewEncoder(w).Encode(catalog); err != nil {
		logger.Error().Err(err).Msg("failed to encode source catalog")
	}
}

// writeResult translates an orchestration outcome into the structured
// {success, message} boundary contract. No error escapes unhandled.
func writeResult(ctx context.Context, w http.ResponseWriter, err error, okMessage string) {
	logger := zerolog.Ctx(ctx)

	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.OperationResult{Success: true, Message: okMessage})
		return
	}

	status, message := statusFromError(err)
	logger.Warn().Err(err).Int("status", status).Msg("operation failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.OperationResult{Success: false, Message: message})
}

func statusFromError(err error) (int, string) {
	var validation *domain.ValidationError
	var authorization *domain.AuthorizationError
	var upstream *domain.UpstreamError
	var integrity *domain.DataIntegrityError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.As(err, &authorization):
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return http.StatusPaymentRequired, authorization.Error()
		}
		return http.StatusForbidden, authorization.Error()
	case errors.As(err, &upstream):
		return http.StatusBadGateway, upstream.Error()
	case errors.As(err, &integrity):
		return http.StatusUnprocessableEntity, integrity.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

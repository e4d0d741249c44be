package reprocess

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/adapters"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/models/store"
	"github.com/seo-tools/site-atlas/pkg/services/embedding"
	"github.com/seo-tools/site-atlas/pkg/services/insight"
	"github.com/seo-tools/site-atlas/pkg/services/rawdata"
	"github.com/seo-tools/site-atlas/pkg/services/scoring"
	"github.com/seo-tools/site-atlas/pkg/services/sources"
	profilestore "github.com/seo-tools/site-atlas/pkg/store/duckdb/profile"
	rawstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/rawdata"
)

const defaultProviderTimeout = 20 * time.Second

// Service runs the idempotent reprocessing pass: read the raw store,
// recompute the score set wholesale, then regenerate insight and
// embedding. Insight and embedding are best-effort; their failures
// are logged and leave the committed scores untouched.
type Service struct {
	raw             rawstore.Store
	profiles        profilestore.Store
	insightProvider insight.Provider
	embedProvider   embedding.Provider
	timeout         time.Duration
	now             func() time.Time
}

type Settings struct {
	ProviderTimeout time.Duration
	// Now overrides the reference time, for deterministic tests.
	Now func() time.Time
}

func NewService(
	raw rawstore.Store,
	profiles profilestore.Store,
	insightProvider insight.Provider,
	embedProvider embedding.Provider,
	settings Settings,
) (*Service, error) {
	if raw == nil || profiles == nil {
		return nil, fmt.Errorf("raw and profile stores are required")
	}
	timeout := settings.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	now := settings.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		raw:             raw,
		profiles:        profiles,
		insightProvider: insightProvider,
		embedProvider:   embedProvider,
		timeout:         timeout,
		now:             now,
	}, nil
}

// Run reprocesses one site.
func (s *Service) Run(ctx context.Context, siteID string) error {
	logger := zerolog.Ctx(ctx)

	if siteID == "" {
		return &domain.ValidationError{Field: "siteId", Reason: "must not be empty"}
	}

	blob, found, err := s.raw.Get(ctx, siteID)
	if err != nil {
		return err
	}
	if !found {
		return &domain.ValidationError{Field: "siteId", Reason: fmt.Sprintf("no raw data for %q", siteID)}
	}

	rawStore, err := rawdata.Decode(ctx, blob, "", rawdata.Options{RegionIndependent: sources.RegionIndependent})
	if err != nil {
		return err
	}

	in, err := scoring.CollectInputs(ctx, rawStore)
	if err != nil {
		return err
	}

	now := s.now()
	scores, remediations := scoring.EvaluateInputs(in, now)
	keywords := scoring.TopKeywords(in, embedding.MaxProfileKeywords)

	siteInsight := s.generateInsight(ctx, scores, keywords)

	if err := s.persistScores(ctx, siteID, scores, remediations, siteInsight, keywords, now); err != nil {
		return err
	}

	// Embedding regenerates whenever scores or insight change. Its
	// failure must not undo the committed scoring pass.
	text := embedding.BuildProfileText(scores, siteInsight, keywords)
	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := embedding.Generate(embedCtx, s.embedProvider, text)
	vector, err := json.Marshal(result.Vector)
	if err != nil {
		logger.Error().Err(err).Str("site", siteID).Msg("failed to encode embedding vector")
		return nil
	}
	if err := s.profiles.UpsertEmbedding(ctx, siteID, vector, result.Provider, result.Degraded, keywords); err != nil {
		logger.Error().Err(err).Str("site", siteID).Msg("failed to store embedding")
		return nil
	}

	logger.Info().
		Str("site", siteID).
		Int("global", scores.Global).
		Bool("degraded_embedding", result.Degraded).
		Msg("reprocessed site")
	return nil
}

func (s *Service) generateInsight(ctx context.Context, scores domain.ScoreSet, keywords []string) *domain.Insight {
	if s.insightProvider == nil {
		return nil
	}
	logger := zerolog.Ctx(ctx)

	inferCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text := embedding.BuildProfileText(scores, nil, keywords)
	result, err := s.insightProvider.Infer(inferCtx, text)
	if err != nil {
		logger.Warn().Err(err).Msg("insight generation failed, continuing without")
		return nil
	}
	return result
}

func (s *Service) persistScores(
	ctx context.Context,
	siteID string,
	scores domain.ScoreSet,
	remediations []domain.RemediationItem,
	siteInsight *domain.Insight,
	keywords []string,
	now time.Time,
) error {
	remBlob, err := json.Marshal(adapters.MapRemediationDomainToRecords(remediations))
	if err != nil {
		return fmt.Errorf("encode remediations: %w", err)
	}

	var insightBlob []byte
	if record := adapters.MapInsightDomainToRecord(siteInsight); record != nil {
		insightBlob, err = json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode insight: %w", err)
		}
	}

	return s.profiles.UpsertScores(ctx, store.SiteProfile{
		SiteID:        siteID,
		Technical:     scores.Technical,
		Semantic:      scores.Semantic,
		LinkAuthority: scores.LinkAuthority,
		Schema:        scores.Schema,
		Monetization:  scores.Monetization,
		TrustSignals:  scores.TrustSignals,
		Freshness:     scores.Freshness,
		Shareability:  scores.Shareability,
		Experience:    scores.Experience,
		Global:        scores.Global,
		MissingInputs: scores.MissingInputs,
		Remediations:  remBlob,
		Insight:       insightBlob,
		Keywords:      keywords,
		CheckedAt:     now,
	})
}

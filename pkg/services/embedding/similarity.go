package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	profilestore "github.com/seo-tools/site-atlas/pkg/store/duckdb/profile"
)

// Cosine returns the cosine similarity of two equal-length vectors,
// in [-1,1]. Zero vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SearchOptions tune a nearest-neighbor query.
type SearchOptions struct {
	// ExcludeSiteID drops the query site itself from the results.
	ExcludeSiteID string
	// IncludeDegraded admits fallback-hash vectors into the ranking.
	// They carry no semantics, so the default excludes them.
	IncludeDegraded bool
}

// Searcher answers nearest-neighbor queries over the stored
// embeddings.
type Searcher struct {
	profiles profilestore.Store
}

func NewSearcher(profiles profilestore.Store) (*Searcher, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile store is nil")
	}
	return &Searcher{profiles: profiles}, nil
}

// Search returns the top-k stored embeddings by descending cosine
// similarity to the query vector, clamped into [0,1].
func (s *Searcher) Search(ctx context.Context, query []float32, k int, opts SearchOptions) ([]domain.SimilarityResult, error) {
	if err := ValidateVector(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []domain.SimilarityResult{}, nil
	}

	records, err := s.profiles.ListEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	results := make([]domain.SimilarityResult, 0, len(records))
	for _, rec := range records {
		if rec.SiteID == opts.ExcludeSiteID {
			continue
		}
		if rec.Degraded && !opts.IncludeDegraded {
			continue
		}

		var vec []float32
		if err := json.Unmarshal(rec.Vector, &vec); err != nil {
			logger.Warn().Err(err).Str("site", rec.SiteID).Msg("skipping unreadable stored vector")
			continue
		}
		if len(vec) != domain.EmbeddingDim {
			logger.Warn().Str("site", rec.SiteID).Int("dim", len(vec)).Msg("skipping wrong-dimension stored vector")
			continue
		}

		sim := Cosine(query, vec)
		if sim < 0 {
			sim = 0
		} else if sim > 1 {
			sim = 1
		}
		results = append(results, domain.SimilarityResult{
			SiteID:     rec.SiteID,
			Similarity: sim,
			Keywords:   rec.Keywords,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// SearchBySite looks up a site's stored vector and runs Search with
// self-exclusion.
func (s *Searcher) SearchBySite(ctx context.Context, siteID string, k int, opts SearchOptions) ([]domain.SimilarityResult, error) {
	record, found, err := s.profiles.Get(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !found || len(record.Vector) == 0 {
		return nil, &domain.ValidationError{Field: "siteId", Reason: fmt.Sprintf("no embedding stored for %q", siteID)}
	}

	var vec []float32
	if err := json.Unmarshal(record.Vector, &vec); err != nil {
		return nil, &domain.DataIntegrityError{Detail: "stored vector is unreadable", Err: err}
	}

	opts.ExcludeSiteID = siteID
	return s.Search(ctx, vec, k, opts)
}

// SearchByText embeds a free-form query string (falling back to the
// hash projection when no provider is available) and runs Search.
func (s *Searcher) SearchByText(ctx context.Context, provider Provider, text string, k int, opts SearchOptions) ([]domain.SimilarityResult, error) {
	result := Generate(ctx, provider, text)
	return s.Search(ctx, result.Vector, k, opts)
}

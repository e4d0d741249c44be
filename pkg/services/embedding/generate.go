package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// FallbackProvider names vectors produced by the hash projection. They
// are deterministic but carry no semantics, so they are flagged
// Degraded wherever they enter the index.
const FallbackProvider = "fallback-hash"

// Provider converts text into a fixed-dimension vector.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is one generated vector with its provenance.
type Result struct {
	Vector   []float32
	Provider string
	Degraded bool
}

// Generate embeds the text through the provider when one is available
// and its output validates; otherwise it falls back to the
// deterministic hash projection and marks the result degraded.
func Generate(ctx context.Context, provider Provider, text string) Result {
	logger := zerolog.Ctx(ctx)

	if provider != nil {
		vec, err := provider.Embed(ctx, text)
		if err == nil {
			if err = ValidateVector(vec); err == nil {
				return Result{Vector: vec, Provider: provider.Name()}
			}
		}
		logger.Warn().Err(err).Str("provider", provider.Name()).Msg("embedding provider failed, using hash fallback")
	}

	return Result{
		Vector:   hashProjection(text),
		Provider: FallbackProvider,
		Degraded: true,
	}
}

// ValidateVector rejects a candidate unless it has the configured
// fixed dimensionality and every component is finite.
func ValidateVector(vec []float32) error {
	if len(vec) != domain.EmbeddingDim {
		return &domain.ValidationError{
			Field:  "vector",
			Reason: fmt.Sprintf("dimension %d, want %d", len(vec), domain.EmbeddingDim),
		}
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &domain.ValidationError{
				Field:  "vector",
				Reason: fmt.Sprintf("component %d is not finite", i),
			}
		}
	}
	return nil
}

// hashProjection builds a deterministic pseudo-random unit vector from
// a character-weighted hash of the text. Identical text always yields
// an identical vector. The output is not semantically meaningful.
func hashProjection(text string) []float32 {
	var seed uint64 = 1469598103934665603 // FNV offset basis
	for i, r := range text {
		seed ^= uint64(r) * uint64(i+1)
		seed *= 1099511628211
	}

	vec := make([]float32, domain.EmbeddingDim)
	state := seed
	var norm float64
	for i := range vec {
		// xorshift64 keeps the sequence cheap and reproducible.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float64(int64(state)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

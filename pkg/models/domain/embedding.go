package domain

// EmbeddingDim is the fixed dimensionality of every stored vector.
// Degraded hash-fallback vectors share the dimension so they remain
// interchangeable with provider output.
const EmbeddingDim = 1536

// SimilarityResult is one nearest-neighbor hit, ordered by descending
// cosine similarity.
type SimilarityResult struct {
	SiteID     string
	Similarity float64
	Keywords   []string
}

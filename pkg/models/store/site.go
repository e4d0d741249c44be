package store

import "time"

// SiteProfile is the persisted derived state for one site: the nine
// dimension scores, the global score, the remediation list, the
// insight object, the embedding vector and its keyword list.
type SiteProfile struct {
	SiteID        string
	Technical     int
	Semantic      int
	LinkAuthority int
	Schema        int
	Monetization  int
	TrustSignals  int
	Freshness     int
	Shareability  int
	Experience    int
	Global        int
	MissingInputs []string
	Remediations  []byte // JSON array of remediation items
	Insight       []byte // JSON insight object, nullable
	Vector        []byte // JSON array of 1536 float32s, nullable
	Provider      string
	Degraded      bool
	Keywords      []string
	CheckedAt     time.Time
}

// EmbeddingRecord is the slice of a profile row the similarity search
// needs: the vector plus the keyword list surfaced in results.
type EmbeddingRecord struct {
	SiteID    string
	Vector    []byte
	Provider  string
	Degraded  bool
	Keywords  []string
	UpdatedAt time.Time
}

// RemediationRecord mirrors domain.RemediationItem in the JSON column.
type RemediationRecord struct {
	Code        string `json:"code"`
	Priority    string `json:"priority"`
	Message     string `json:"message"`
	ScoreImpact int    `json:"scoreImpact"`
	Category    string `json:"category"`
}

// InsightRecord mirrors domain.Insight in the JSON column.
type InsightRecord struct {
	Category      string   `json:"category"`
	Summary       string   `json:"summary"`
	RiskLevel     string   `json:"riskLevel"`
	PriceEstimate float64  `json:"priceEstimate"`
	Pros          []string `json:"pros"`
	Cons          []string `json:"cons"`
}

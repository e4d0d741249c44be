package api

import "time"

type ScoreSet struct {
	Technical     int      `json:"technical"`
	Semantic      int      `json:"semantic"`
	LinkAuthority int      `json:"link_authority"`
	Schema        int      `json:"schema"`
	Monetization  int      `json:"monetization"`
	TrustSignals  int      `json:"trust_signals"`
	Freshness     int      `json:"freshness"`
	Shareability  int      `json:"shareability"`
	Experience    int      `json:"experience"`
	Global        int      `json:"global"`
	MissingInputs []string `json:"missing_inputs,omitempty"`
}

type RemediationItem struct {
	Code        string `json:"code"`
	Priority    string `json:"priority"`
	Message     string `json:"message"`
	ScoreImpact int    `json:"score_impact"`
	Category    string `json:"category"`
}

type Insight struct {
	Category      string   `json:"category"`
	Summary       string   `json:"summary"`
	RiskLevel     string   `json:"risk_level"`
	PriceEstimate float64  `json:"price_estimate"`
	Pros          []string `json:"pros"`
	Cons          []string `json:"cons"`
}

type SiteProfile struct {
	SiteID       string            `json:"site_id"`
	Scores       *ScoreSet         `json:"scores,omitempty"`
	Remediations []RemediationItem `json:"remediations"`
	Insight      *Insight          `json:"insight,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	CheckedAt    *time.Time        `json:"checked_at,omitempty"`
}

type SimilarityResult struct {
	SiteID     string   `json:"site_id"`
	Similarity float64  `json:"similarity"`
	Keywords   []string `json:"keywords,omitempty"`
}

type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

package domain

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ScoreSet holds the nine independent dimension scores plus the
// weighted global aggregate. Every value is an integer in [0,100].
//
// A dimension whose required raw source was absent scores 0 and is
// listed in MissingInputs, so consumers can tell "unknown" apart
// from "measured as bad".
type ScoreSet struct {
	Technical     int
	Semantic      int
	LinkAuthority int
	Schema        int
	Monetization  int
	TrustSignals  int
	Freshness     int
	Shareability  int
	Experience    int

	Global int

	MissingInputs []string
}

// Dimensions returns label/value pairs in a fixed order. The order is
// load-bearing: the embedding profile text is built from it and must
// be identical across regenerations.
func (s ScoreSet) Dimensions() []ScoreDimension {
	return []ScoreDimension{
		{"technical", s.Technical},
		{"semantic", s.Semantic},
		{"link_authority", s.LinkAuthority},
		{"schema", s.Schema},
		{"monetization", s.Monetization},
		{"trust_signals", s.TrustSignals},
		{"freshness", s.Freshness},
		{"shareability", s.Shareability},
		{"experience", s.Experience},
	}
}

type ScoreDimension struct {
	Label string
	Value int
}

// RemediationItem is one actionable, prioritized fix derived from the
// raw audit predicates. Items are advisory and not numerically coupled
// to the dimension scores.
type RemediationItem struct {
	Code        string
	Priority    Priority
	Message     string
	ScoreImpact int
	Category    string
}

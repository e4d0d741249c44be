package domain

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Insight is the AI-generated profile of a site. Responses from the
// provider are validated as a unit: a missing required field or an
// out-of-enum risk level discards the whole object.
type Insight struct {
	Category      string
	Summary       string
	RiskLevel     RiskLevel
	PriceEstimate float64
	Pros          []string
	Cons          []string
}

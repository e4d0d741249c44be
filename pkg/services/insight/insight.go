package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// Provider generates an AI insight from a site's profile text. A nil
// insight without an error means the provider declined to answer;
// callers treat both failure modes as "no insight".
type Provider interface {
	Infer(ctx context.Context, profileText string) (*domain.Insight, error)
}

type response struct {
	Category      *string  `json:"category"`
	Summary       *string  `json:"summary"`
	RiskLevel     *string  `json:"riskLevel"`
	PriceEstimate *float64 `json:"priceEstimate"`
	Pros          []string `json:"pros"`
	Cons          []string `json:"cons"`
}

// ParseResponse validates a provider response as a unit: any missing
// required field or out-of-enum risk level discards the whole insight.
// Partial acceptance is never allowed.
func ParseResponse(data []byte) (*domain.Insight, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &domain.DataIntegrityError{Detail: "insight response is malformed", Err: err}
	}

	if resp.Category == nil || *resp.Category == "" {
		return nil, discard("category")
	}
	if resp.Summary == nil || *resp.Summary == "" {
		return nil, discard("summary")
	}
	if resp.RiskLevel == nil {
		return nil, discard("riskLevel")
	}
	risk := domain.RiskLevel(*resp.RiskLevel)
	switch risk {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
	default:
		return nil, &domain.DataIntegrityError{
			Detail: fmt.Sprintf("insight riskLevel %q is out of enum", *resp.RiskLevel),
		}
	}
	if resp.PriceEstimate == nil {
		return nil, discard("priceEstimate")
	}
	if resp.Pros == nil {
		return nil, discard("pros")
	}
	if resp.Cons == nil {
		return nil, discard("cons")
	}

	return &domain.Insight{
		Category:      *resp.Category,
		Summary:       *resp.Summary,
		RiskLevel:     risk,
		PriceEstimate: *resp.PriceEstimate,
		Pros:          resp.Pros,
		Cons:          resp.Cons,
	}, nil
}

func discard(field string) error {
	return &domain.DataIntegrityError{
		Detail: fmt.Sprintf("insight response missing required field %s", field),
	}
}

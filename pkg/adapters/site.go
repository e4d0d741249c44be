package adapters

import (
	"encoding/json"

	"github.com/seo-tools/site-atlas/pkg/models/api"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/models/store"
)

func MapScoreSetDomainToApi(s domain.ScoreSet) api.ScoreSet {
	return api.ScoreSet{
		Technical:     s.Technical,
		Semantic:      s.Semantic,
		LinkAuthority: s.LinkAuthority,
		Schema:        s.Schema,
		Monetization:  s.Monetization,
		TrustSignals:  s.TrustSignals,
		Freshness:     s.Freshness,
		Shareability:  s.Shareability,
		Experience:    s.Experience,
		Global:        s.Global,
		MissingInputs: s.MissingInputs,
	}
}

func MapRemediationDomainToApi(items []domain.RemediationItem) []api.RemediationItem {
	out := make([]api.RemediationItem, 0, len(items))
	for _, item := range items {
		out = append(out, api.RemediationItem{
			Code:        item.Code,
			Priority:    string(item.Priority),
			Message:     item.Message,
			ScoreImpact: item.ScoreImpact,
			Category:    item.Category,
		})
	}
	return out
}

func MapInsightDomainToApi(in *domain.Insight) *api.Insight {
	if in == nil {
		return nil
	}
	return &api.Insight{
		Category:      in.Category,
		Summary:       in.Summary,
		RiskLevel:     string(in.RiskLevel),
		PriceEstimate: in.PriceEstimate,
		Pros:          in.Pros,
		Cons:          in.Cons,
	}
}

func MapSiteDomainToApi(site domain.Site) api.SiteProfile {
	profile := api.SiteProfile{
		SiteID:       site.ID,
		Remediations: MapRemediationDomainToApi(site.Remediations),
		Insight:      MapInsightDomainToApi(site.Insight),
		Keywords:     site.Keywords,
		CheckedAt:    site.LastCheckedAt,
	}
	if site.Scores != nil {
		scores := MapScoreSetDomainToApi(*site.Scores)
		profile.Scores = &scores
	}
	return profile
}

func MapSimilarityDomainToApi(results []domain.SimilarityResult) []api.SimilarityResult {
	out := make([]api.SimilarityResult, 0, len(results))
	for _, r := range results {
		out = append(out, api.SimilarityResult{
			SiteID:     r.SiteID,
			Similarity: r.Similarity,
			Keywords:   r.Keywords,
		})
	}
	return out
}

// MapSiteProfileStoreToDomain rebuilds the derived site state from a
// persisted profile row. Malformed JSON columns are dropped rather than
// failing the whole read.
func MapSiteProfileStoreToDomain(p store.SiteProfile) domain.Site {
	site := domain.Site{
		ID:       p.SiteID,
		Keywords: p.Keywords,
		Scores: &domain.ScoreSet{
			Technical:     p.Technical,
			Semantic:      p.Semantic,
			LinkAuthority: p.LinkAuthority,
			Schema:        p.Schema,
			Monetization:  p.Monetization,
			TrustSignals:  p.TrustSignals,
			Freshness:     p.Freshness,
			Shareability:  p.Shareability,
			Experience:    p.Experience,
			Global:        p.Global,
			MissingInputs: p.MissingInputs,
		},
	}
	if !p.CheckedAt.IsZero() {
		t := p.CheckedAt
		site.LastCheckedAt = &t
	}
	if len(p.Remediations) > 0 {
		var records []store.RemediationRecord
		if err := json.Unmarshal(p.Remediations, &records); err == nil {
			for _, r := range records {
				site.Remediations = append(site.Remediations, domain.RemediationItem{
					Code:        r.Code,
					Priority:    domain.Priority(r.Priority),
					Message:     r.Message,
					ScoreImpact: r.ScoreImpact,
					Category:    r.Category,
				})
			}
		}
	}
	if len(p.Insight) > 0 {
		var record store.InsightRecord
		if err := json.Unmarshal(p.Insight, &record); err == nil {
			site.Insight = &domain.Insight{
				Category:      record.Category,
				Summary:       record.Summary,
				RiskLevel:     domain.RiskLevel(record.RiskLevel),
				PriceEstimate: record.PriceEstimate,
				Pros:          record.Pros,
				Cons:          record.Cons,
			}
		}
	}
	return site
}

func MapRemediationDomainToRecords(items []domain.RemediationItem) []store.RemediationRecord {
	out := make([]store.RemediationRecord, 0, len(items))
	for _, item := range items {
		out = append(out, store.RemediationRecord{
			Code:        item.Code,
			Priority:    string(item.Priority),
			Message:     item.Message,
			ScoreImpact: item.ScoreImpact,
			Category:    item.Category,
		})
	}
	return out
}

func MapInsightDomainToRecord(in *domain.Insight) *store.InsightRecord {
	if in == nil {
		return nil
	}
	return &store.InsightRecord{
		Category:      in.Category,
		Summary:       in.Summary,
		RiskLevel:     string(in.RiskLevel),
		PriceEstimate: in.PriceEstimate,
		Pros:          in.Pros,
		Cons:          in.Cons,
	}
}

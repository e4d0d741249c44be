package scoring

import (
	"sort"

	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

var priorityRank = map[domain.Priority]int{
	domain.PriorityHigh:   0,
	domain.PriorityMedium: 1,
	domain.PriorityLow:    2,
}

// buildRemediations derives the advisory fix list from the same raw
// predicates the scorers use. The list overlaps with the scores but is
// not numerically coupled to them. Items are sorted by priority with a
// stable tie-break on discovery order.
func buildRemediations(in Inputs) []domain.RemediationItem {
	items := make([]domain.RemediationItem, 0)
	add := func(code string, priority domain.Priority, message string, impact int, category string) {
		items = append(items, domain.RemediationItem{
			Code:        code,
			Priority:    priority,
			Message:     message,
			ScoreImpact: impact,
			Category:    category,
		})
	}

	if a := in.Audit; a != nil {
		if !a.HasSSL {
			add("missing_ssl", domain.PriorityHigh,
				"Site is served without SSL; install a certificate and redirect HTTP to HTTPS.", 20, "security")
		}
		if !a.HasCanonical {
			add("missing_canonical", domain.PriorityMedium,
				"Pages lack canonical tags; duplicate content may split ranking signals.", 10, "technical")
		}
		if a.BrokenLinks > 0 {
			add("broken_links", domain.PriorityMedium,
				"Broken internal links detected; fix or remove dead references.", 2*min(a.BrokenLinks, 15), "technical")
		}
		if a.LoadTimeMs > 3000 {
			add("slow_load", domain.PriorityHigh,
				"Page load time exceeds 3 seconds; optimize assets and server response.", 15, "performance")
		} else if a.LoadTimeMs > 1500 {
			add("slow_load", domain.PriorityMedium,
				"Page load time exceeds 1.5 seconds; consider caching and compression.", 5, "performance")
		}
		if !a.MobileFriendly {
			add("not_mobile_friendly", domain.PriorityHigh,
				"Site fails the mobile-friendliness check; adopt a responsive layout.", 15, "experience")
		}
		if !a.Schema.Present {
			add("schema_missing", domain.PriorityMedium,
				"No structured-data markup found; add schema.org annotations.", 10, "structured-data")
		} else if a.Schema.Errors > 0 {
			add("schema_errors", domain.PriorityLow,
				"Structured-data markup has validation errors; fix the reported issues.", 5, "structured-data")
		}
		if !a.HasPrivacyPolicy {
			add("missing_privacy_policy", domain.PriorityMedium,
				"No privacy policy page found; publish one to improve trust signals.", 10, "trust")
		}
		if !a.HasContactInfo {
			add("missing_contact_info", domain.PriorityLow,
				"No contact information found; add a reachable contact page.", 5, "trust")
		}
		if !a.OpenGraph {
			add("missing_open_graph", domain.PriorityLow,
				"Open Graph tags are missing; shared links will render poorly.", 5, "social")
		}
		if !a.TwitterCard {
			add("missing_twitter_card", domain.PriorityLow,
				"Twitter card tags are missing; add summary card metadata.", 3, "social")
		}
	}

	if b := in.Backlinks; b != nil {
		if b.ToxicRatio > 0.2 {
			add("toxic_backlinks", domain.PriorityHigh,
				"More than 20% of backlinks look toxic; disavow the worst offenders.", 20, "links")
		}
		if b.ReferringDomains < 10 {
			add("few_referring_domains", domain.PriorityMedium,
				"Fewer than 10 referring domains; invest in link building.", 10, "links")
		}
	}

	if k := in.Keywords; k != nil && len(k.Keywords) > 0 {
		cpcRich := 0
		for _, kw := range k.Keywords {
			if kw.CPC >= 1.0 {
				cpcRich++
			}
		}
		if float64(cpcRich)/float64(len(k.Keywords)) < 0.2 {
			add("low_cpc_coverage", domain.PriorityLow,
				"Few tracked keywords carry commercial value; target higher-CPC terms.", 5, "monetization")
		}
	}

	if t := in.Traffic; t != nil && t.BounceRate > 0.6 {
		add("high_bounce_rate", domain.PriorityMedium,
			"Bounce rate exceeds 60%; review landing-page relevance and speed.", 10, "experience")
	}

	sort.SliceStable(items, func(i, j int) bool {
		return priorityRank[items[i].Priority] < priorityRank[items[j].Priority]
	})
	return items
}

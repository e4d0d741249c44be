package embedding

import (
	"fmt"
	"strings"

	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// MaxProfileKeywords caps the keyword tail of the profile text.
const MaxProfileKeywords = 50

// BuildProfileText renders the deterministic textual profile an
// embedding is generated from. Field order is fixed (category,
// summary, risk, price estimate, pros, cons, dimension scores,
// keywords) so identical inputs always produce identical text and
// therefore reproducible embeddings.
func BuildProfileText(scores domain.ScoreSet, insight *domain.Insight, keywords []string) string {
	var b strings.Builder

	if insight != nil {
		fmt.Fprintf(&b, "category: %s\n", insight.Category)
		fmt.Fprintf(&b, "summary: %s\n", insight.Summary)
		fmt.Fprintf(&b, "risk: %s\n", insight.RiskLevel)
		fmt.Fprintf(&b, "price estimate: %.2f\n", insight.PriceEstimate)
		fmt.Fprintf(&b, "pros: %s\n", strings.Join(insight.Pros, ", "))
		fmt.Fprintf(&b, "cons: %s\n", strings.Join(insight.Cons, ", "))
	}

	for _, dim := range scores.Dimensions() {
		fmt.Fprintf(&b, "%s:%d\n", dim.Label, dim.Value)
	}
	fmt.Fprintf(&b, "global:%d\n", scores.Global)

	if len(keywords) > 0 {
		capped := keywords
		if len(capped) > MaxProfileKeywords {
			capped = capped[:MaxProfileKeywords]
		}
		fmt.Fprintf(&b, "keywords: %s\n", strings.Join(capped, ", "))
	}

	return b.String()
}

package scoring

import "time"

// Each dimension scorer is pure and deterministic: it starts from a
// baseline, applies fixed additive penalties and bonuses per detected
// predicate, then clamps to [0,100]. The second return value reports
// whether the required input was present; absent input scores 0 and is
// recorded in ScoreSet.MissingInputs.

func scoreTechnical(in Inputs) (int, bool) {
	if in.Audit == nil {
		return 0, false
	}
	a := in.Audit

	score := 100.0
	if !a.HasSSL {
		score -= 20
	}
	if !a.HasCanonical {
		score -= 10
	}
	if a.BrokenLinks > 0 {
		penalty := float64(a.BrokenLinks) * 2
		if penalty > 30 {
			penalty = 30
		}
		score -= penalty
	}
	switch {
	case a.LoadTimeMs > 3000:
		score -= 15
	case a.LoadTimeMs > 1500:
		score -= 5
	}
	if !a.MobileFriendly {
		score -= 15
	}
	return clampScore(score), true
}

func scoreSemantic(in Inputs) (int, bool) {
	if in.Keywords == nil || len(in.Keywords.Keywords) == 0 {
		return 0, false
	}

	total := len(in.Keywords.Keywords)
	top10 := 0
	positionSum := 0
	for _, kw := range in.Keywords.Keywords {
		positionSum += kw.Position
		if kw.Position > 0 && kw.Position <= 10 {
			top10++
		}
	}
	avgPosition := float64(positionSum) / float64(total)
	top10Share := float64(top10) / float64(total)

	score := 100.0
	switch {
	case avgPosition > 30:
		score -= 40
	case avgPosition > 10:
		score -= 20
	}
	switch {
	case top10Share < 0.2:
		score -= 20
	case top10Share < 0.5:
		score -= 10
	}
	if total < 10 {
		score -= 10
	}
	// Domain overlap gives ranking context: a thin competitive
	// footprint suggests weak topical coverage.
	if in.Competitors != nil && len(in.Competitors.Overlaps) < 3 {
		score -= 5
	}
	return clampScore(score), true
}

func scoreLinkAuthority(in Inputs) (int, bool) {
	if in.Backlinks == nil {
		return 0, false
	}
	b := in.Backlinks

	score := float64(b.DomainRating)
	switch {
	case b.ToxicRatio > 0.2:
		score -= 20
	case b.ToxicRatio > 0.1:
		score -= 10
	}
	if b.ReferringDomains < 10 {
		score -= 10
	}
	if b.DoFollowRatio < 0.3 {
		score -= 10
	}
	return clampScore(score), true
}

func scoreSchema(in Inputs) (int, bool) {
	if in.Audit == nil {
		return 0, false
	}
	markup := in.Audit.Schema

	// Present and error-free markup gets full credit.
	if markup.Present && markup.Errors == 0 {
		return 100, true
	}
	if !markup.Present {
		return 20, true
	}
	penalty := float64(markup.Errors) * 5
	if penalty > 30 {
		penalty = 30
	}
	return clampScore(60 - penalty), true
}

func scoreMonetization(in Inputs) (int, bool) {
	if in.Keywords == nil || len(in.Keywords.Keywords) == 0 {
		return 0, false
	}

	cpcRich := 0
	cpcSum := 0.0
	for _, kw := range in.Keywords.Keywords {
		cpcSum += kw.CPC
		if kw.CPC >= 1.0 {
			cpcRich++
		}
	}
	total := float64(len(in.Keywords.Keywords))
	richShare := float64(cpcRich) / total
	avgCPC := cpcSum / total
	if avgCPC > 5 {
		avgCPC = 5
	}

	// Proportional credit: the CPC-rich share carries most of the
	// weight, average CPC tops it up.
	score := richShare*80 + avgCPC/5*20
	return clampScore(score), true
}

func scoreTrustSignals(in Inputs) (int, bool) {
	if in.Audit == nil {
		return 0, false
	}
	a := in.Audit

	score := 100.0
	if !a.HasSSL {
		score -= 25
	}
	if !a.HasPrivacyPolicy {
		score -= 20
	}
	if !a.HasContactInfo {
		score -= 15
	}
	if in.Backlinks != nil && in.Backlinks.ToxicRatio > 0.2 {
		score -= 20
	}
	return clampScore(score), true
}

func scoreFreshness(in Inputs, now time.Time) (int, bool) {
	if in.History == nil || len(in.History.Points) == 0 {
		return 0, false
	}
	points := in.History.Points

	last := points[len(points)-1]
	age := now.Sub(last.Date)

	score := 100.0
	switch {
	case age > 180*24*time.Hour:
		score -= 60
	case age > 90*24*time.Hour:
		score -= 30
	}
	if len(points) > 1 && last.Visibility < points[0].Visibility {
		score -= 10
	}
	if in.Traffic != nil && in.Traffic.BounceRate > 0.7 {
		score -= 10
	}
	return clampScore(score), true
}

func scoreShareability(in Inputs) (int, bool) {
	if in.Audit == nil {
		return 0, false
	}
	a := in.Audit

	score := 100.0
	if !a.OpenGraph {
		score -= 30
	}
	if !a.TwitterCard {
		score -= 20
	}
	if in.Serp != nil && len(in.Serp.Features) == 0 {
		score -= 10
	}
	return clampScore(score), true
}

func scoreExperience(in Inputs) (int, bool) {
	if in.Audit == nil {
		return 0, false
	}
	a := in.Audit

	score := 100.0
	switch {
	case a.LoadTimeMs > 3000:
		score -= 25
	case a.LoadTimeMs > 1500:
		score -= 10
	}
	if !a.MobileFriendly {
		score -= 25
	}
	if in.Traffic != nil {
		if in.Traffic.BounceRate > 0.6 {
			score -= 15
		}
		if in.Traffic.AvgSessionSeconds > 0 && in.Traffic.AvgSessionSeconds < 30 {
			score -= 10
		}
	}
	return clampScore(score), true
}

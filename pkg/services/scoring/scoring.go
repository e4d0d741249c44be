package scoring

import (
	"context"
	"time"

	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// Evaluate recomputes the full score set and the remediation list from
// the raw store. The score set is always rebuilt wholesale, never
// patched. Running Evaluate twice on bit-identical raw data with the
// same reference time yields bit-identical results.
//
// It fails only when the primary source (ranking history) is entirely
// absent; every other missing source degrades the dimensions that
// depend on it to 0 and records them in MissingInputs.
func Evaluate(ctx context.Context, raw domain.RawStore, now time.Time) (domain.ScoreSet, []domain.RemediationItem, error) {
	in, err := CollectInputs(ctx, raw)
	if err != nil {
		return domain.ScoreSet{}, nil, err
	}
	scores, remediations := EvaluateInputs(in, now)
	return scores, remediations, nil
}

// EvaluateInputs scores already-collected inputs. Split out so callers
// that also need the typed inputs (keyword extraction, insight
// generation) parse the raw store once.
func EvaluateInputs(in Inputs, now time.Time) (domain.ScoreSet, []domain.RemediationItem) {
	var scores domain.ScoreSet
	missing := make([]string, 0)

	record := func(label string, value int, ok bool) int {
		if !ok {
			missing = append(missing, label)
			return 0
		}
		return value
	}

	v, ok := scoreTechnical(in)
	scores.Technical = record("technical", v, ok)
	v, ok = scoreSemantic(in)
	scores.Semantic = record("semantic", v, ok)
	v, ok = scoreLinkAuthority(in)
	scores.LinkAuthority = record("link_authority", v, ok)
	v, ok = scoreSchema(in)
	scores.Schema = record("schema", v, ok)
	v, ok = scoreMonetization(in)
	scores.Monetization = record("monetization", v, ok)
	v, ok = scoreTrustSignals(in)
	scores.TrustSignals = record("trust_signals", v, ok)
	v, ok = scoreFreshness(in, now)
	scores.Freshness = record("freshness", v, ok)
	v, ok = scoreShareability(in)
	scores.Shareability = record("shareability", v, ok)
	v, ok = scoreExperience(in)
	scores.Experience = record("experience", v, ok)

	scores.MissingInputs = missing
	scores.Global = globalScore(scores)

	return scores, buildRemediations(in)
}

func globalScore(s domain.ScoreSet) int {
	weighted := WeightTechnical*float64(s.Technical) +
		WeightSemantic*float64(s.Semantic) +
		WeightLinkAuthority*float64(s.LinkAuthority) +
		WeightSchema*float64(s.Schema) +
		WeightMonetization*float64(s.Monetization) +
		WeightTrustSignals*float64(s.TrustSignals) +
		WeightFreshness*float64(s.Freshness) +
		WeightShareability*float64(s.Shareability) +
		WeightExperience*float64(s.Experience)
	return clampScore(weighted)
}

// TopKeywords extracts the keyword list fed into the embedding
// profile, capped at limit, in payload order.
func TopKeywords(in Inputs, limit int) []string {
	if in.Keywords == nil {
		return nil
	}
	out := make([]string, 0, limit)
	for _, kw := range in.Keywords.Keywords {
		if len(out) == limit {
			break
		}
		out = append(out, kw.Keyword)
	}
	return out
}

package scoring

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/services/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func rawWith(t *testing.T, payloads map[string]string) domain.RawStore {
	t.Helper()
	store := domain.RawStore{}
	for source, payload := range payloads {
		region := "en-US"
		if sources.RegionIndependent(source) {
			region = domain.RegionGlobal
		}
		if store[region] == nil {
			store[region] = map[string]domain.RawEntry{}
		}
		store[region][source] = domain.RawEntry{
			Payload:   json.RawMessage(payload),
			FetchedAt: testNow.Add(-24 * time.Hour),
		}
	}
	return store
}

const historyPayload = `{"points":[
	{"date":"2025-05-01T00:00:00Z","position":12,"visibility":0.4},
	{"date":"2025-06-01T00:00:00Z","position":8,"visibility":0.6}
]}`

func TestWeightTableSumsToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightSum(), 1e-9)
	assert.Len(t, Weights(), 9)
}

func TestEvaluate_PrimarySourceAbsent(t *testing.T) {
	raw := rawWith(t, map[string]string{
		"audit": `{"hasSsl":true}`,
	})

	_, _, err := Evaluate(context.Background(), raw, testNow)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, sources.SourceHistory, upstream.Source)
}

func TestEvaluate_HistoryOnly_DegradesToMissingInputs(t *testing.T) {
	raw := rawWith(t, map[string]string{"history": historyPayload})

	scores, remediations, err := Evaluate(context.Background(), raw, testNow)
	require.NoError(t, err)

	// Freshness has its input; every other dimension is missing and
	// coerced to 0 with an explicit marker.
	assert.Zero(t, scores.Technical)
	assert.Zero(t, scores.Semantic)
	assert.Zero(t, scores.LinkAuthority)
	assert.Zero(t, scores.Schema)
	assert.Zero(t, scores.Monetization)
	assert.Zero(t, scores.TrustSignals)
	assert.Zero(t, scores.Shareability)
	assert.Zero(t, scores.Experience)
	assert.Positive(t, scores.Freshness)

	assert.ElementsMatch(t, []string{
		"technical", "semantic", "link_authority", "schema",
		"monetization", "trust_signals", "shareability", "experience",
	}, scores.MissingInputs)

	assert.GreaterOrEqual(t, scores.Global, 0)
	assert.LessOrEqual(t, scores.Global, 100)
	assert.NotNil(t, remediations)
}

func TestEvaluate_AllScoresInRange(t *testing.T) {
	raw := rawWith(t, map[string]string{
		"history":     historyPayload,
		"audit":       `{"hasSsl":false,"hasCanonical":false,"brokenLinks":500,"loadTimeMs":9000,"mobileFriendly":false,"schema":{"present":true,"errors":50}}`,
		"keywords":    `{"keywords":[{"keyword":"a","position":95,"cpc":0,"volume":1}]}`,
		"backlinks":   `{"domainRating":1,"referringDomains":1,"toxicRatio":0.9,"doFollowRatio":0.1}`,
		"competitors": `{"overlaps":[]}`,
		"traffic":     `{"monthlyVisits":1,"bounceRate":0.99,"avgSessionSeconds":2}`,
		"serp":        `{"features":[]}`,
	})

	scores, _, err := Evaluate(context.Background(), raw, testNow)
	require.NoError(t, err)

	for _, dim := range scores.Dimensions() {
		assert.GreaterOrEqual(t, dim.Value, 0, dim.Label)
		assert.LessOrEqual(t, dim.Value, 100, dim.Label)
	}
	assert.GreaterOrEqual(t, scores.Global, 0)
	assert.LessOrEqual(t, scores.Global, 100)
	assert.Empty(t, scores.MissingInputs)
}

func TestEvaluate_Deterministic(t *testing.T) {
	raw := rawWith(t, map[string]string{
		"history":   historyPayload,
		"audit":     `{"hasSsl":true,"hasCanonical":true,"mobileFriendly":true,"schema":{"present":true,"errors":0},"openGraph":true,"twitterCard":true,"hasPrivacyPolicy":true,"hasContactInfo":true,"loadTimeMs":900}`,
		"keywords":  `{"keywords":[{"keyword":"seo tools","position":3,"cpc":2.5,"volume":1000}]}`,
		"backlinks": `{"domainRating":70,"referringDomains":120,"toxicRatio":0.02,"doFollowRatio":0.8}`,
	})

	first, firstRems, err := Evaluate(context.Background(), raw, testNow)
	require.NoError(t, err)
	second, secondRems, err := Evaluate(context.Background(), raw, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstRems, secondRems)
}

func TestEvaluate_MalformedAuxiliaryPayloadDegrades(t *testing.T) {
	raw := rawWith(t, map[string]string{
		"history":   historyPayload,
		"backlinks": `not even json`,
	})

	scores, _, err := Evaluate(context.Background(), raw, testNow)
	require.NoError(t, err)
	assert.Zero(t, scores.LinkAuthority)
	assert.Contains(t, scores.MissingInputs, "link_authority")
}

func TestGlobalScore_WeightedAggregate(t *testing.T) {
	s := domain.ScoreSet{
		Technical:     100,
		Semantic:      100,
		LinkAuthority: 100,
		Schema:        100,
		Monetization:  100,
		TrustSignals:  100,
		Freshness:     100,
		Shareability:  100,
		Experience:    100,
	}
	assert.Equal(t, 100, globalScore(s))

	assert.Equal(t, 0, globalScore(domain.ScoreSet{}))

	// One perfect dimension at weight .20 contributes exactly 20.
	assert.Equal(t, 20, globalScore(domain.ScoreSet{Semantic: 100}))
}

func TestTopKeywords_CapsAtLimit(t *testing.T) {
	keywords := make([]sources.KeywordRank, 60)
	for i := range keywords {
		keywords[i] = sources.KeywordRank{Keyword: "kw", Position: i + 1}
	}
	in := Inputs{Keywords: &sources.KeywordData{Keywords: keywords}}

	assert.Len(t, TopKeywords(in, 50), 50)
	assert.Nil(t, TopKeywords(Inputs{}, 50))
}

func TestScoreSchema_FullCreditWhenPresentAndClean(t *testing.T) {
	in := Inputs{Audit: &sources.AuditData{Schema: sources.SchemaMarkup{Present: true, Errors: 0}}}
	score, ok := scoreSchema(in)
	require.True(t, ok)
	assert.Equal(t, 100, score)

	in.Audit.Schema.Errors = 4
	score, _ = scoreSchema(in)
	assert.Equal(t, 40, score)

	in.Audit.Schema = sources.SchemaMarkup{}
	score, _ = scoreSchema(in)
	assert.Equal(t, 20, score)
}

func TestScoreMonetization_ProportionalToCPCRichShare(t *testing.T) {
	in := Inputs{Keywords: &sources.KeywordData{Keywords: []sources.KeywordRank{
		{Keyword: "cheap", CPC: 0.1},
		{Keyword: "rich", CPC: 5.0},
	}}}
	score, ok := scoreMonetization(in)
	require.True(t, ok)
	// Half the keywords are CPC-rich (40) + avg CPC 2.55/5*20 (10.2).
	assert.Equal(t, 50, score)
}

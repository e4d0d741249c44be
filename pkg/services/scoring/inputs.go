package scoring

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/services/sources"
)

// Inputs are the typed views of the raw store the dimension scorers
// consume. A nil field means the source is absent or its payload was
// malformed; scorers degrade instead of failing.
type Inputs struct {
	Audit       *sources.AuditData
	Keywords    *sources.KeywordData
	Backlinks   *sources.BacklinkData
	Competitors *sources.CompetitorData
	History     *sources.HistoryData
	Traffic     *sources.TrafficData
	Serp        *sources.SerpData
}

// CollectInputs parses the freshest payload of every source out of the
// raw store. A malformed payload is logged and treated as absent; a
// missing primary source aborts, since every downstream computation
// depends on the entity having ranking history at all.
func CollectInputs(ctx context.Context, raw domain.RawStore) (Inputs, error) {
	logger := zerolog.Ctx(ctx)

	var in Inputs
	in.Audit = collect(raw, sources.SourceAudit, sources.ParseAudit, logger)
	in.Keywords = collect(raw, sources.SourceKeywords, sources.ParseKeywords, logger)
	in.Backlinks = collect(raw, sources.SourceBacklinks, sources.ParseBacklinks, logger)
	in.Competitors = collect(raw, sources.SourceCompetitors, sources.ParseCompetitors, logger)
	in.History = collect(raw, sources.SourceHistory, sources.ParseHistory, logger)
	in.Traffic = collect(raw, sources.SourceTraffic, sources.ParseTraffic, logger)
	in.Serp = collect(raw, sources.SourceSerp, sources.ParseSerp, logger)

	if in.History == nil {
		return Inputs{}, &domain.UpstreamError{
			Source: sources.PrimarySource,
			Err:    errPrimaryMissing,
		}
	}
	return in, nil
}

var errPrimaryMissing = &domain.ValidationError{
	Field:  "raw",
	Reason: "primary source history is absent",
}

func collect[T any](
	raw domain.RawStore,
	source string,
	parse func(data json.RawMessage) (*T, error),
	logger *zerolog.Logger,
) *T {
	entry, ok := raw.Latest(source)
	if !ok {
		return nil
	}
	parsed, err := parse(entry.Payload)
	if err != nil {
		logger.Warn().Err(err).Str("source", source).Msg("discarding malformed payload")
		return nil
	}
	return parsed
}

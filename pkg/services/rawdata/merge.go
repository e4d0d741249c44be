package rawdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// Options configure the merge engine. RegionIndependent reports
// whether a source files under the "global" region regardless of the
// requested region key.
type Options struct {
	RegionIndependent func(source string) bool
}

type legacyEntry struct {
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Decode parses a persisted raw blob into the nested region/source
// shape. Blobs written in the legacy flat-list format are migrated
// with migrateRegion as the target region for region-scoped sources;
// legacy entries carry no region of their own, so data that belonged
// to other regions is filed under migrateRegion or overwritten. That
// loss is deliberate and logged.
func Decode(ctx context.Context, data []byte, migrateRegion string, opts Options) (domain.RawStore, error) {
	if len(data) == 0 {
		return domain.RawStore{}, nil
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return migrateLegacy(ctx, trimmed, migrateRegion, opts)
	}

	var store domain.RawStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, &domain.DataIntegrityError{Detail: "raw blob is neither nested object nor legacy list", Err: err}
	}
	if store == nil {
		store = domain.RawStore{}
	}
	return store, nil
}

func migrateLegacy(ctx context.Context, data []byte, migrateRegion string, opts Options) (domain.RawStore, error) {
	logger := zerolog.Ctx(ctx)

	var entries []legacyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &domain.DataIntegrityError{Detail: "legacy raw list is malformed", Err: err}
	}

	if migrateRegion == "" {
		migrateRegion = domain.RegionGlobal
	}

	migrated := domain.RawStore{}
	dropped := 0
	for _, entry := range entries {
		if entry.Source == "" {
			dropped++
			continue
		}
		region := migrateRegion
		if opts.RegionIndependent != nil && opts.RegionIndependent(entry.Source) {
			region = domain.RegionGlobal
		}
		if migrated[region] == nil {
			migrated[region] = map[string]domain.RawEntry{}
		}
		// Keep the freshest entry per (region, source); older
		// duplicates are superseded, same as last-write-wins.
		if existing, ok := migrated[region][entry.Source]; ok && existing.FetchedAt.After(entry.FetchedAt) {
			continue
		}
		migrated[region][entry.Source] = domain.RawEntry{Payload: entry.Payload, FetchedAt: entry.FetchedAt}
	}

	logger.Warn().
		Int("entries", len(entries)).
		Int("dropped", dropped).
		Str("region", migrateRegion).
		Msg("migrated legacy flat raw store; entries for other regions may have been lost")

	return migrated, nil
}

// Merge files one payload into the blob under (region, source) with
// last-write-wins semantics and returns the re-encoded blob. Writing
// one region never removes or alters data filed under another.
func Merge(
	ctx context.Context,
	data []byte,
	region, source string,
	payload json.RawMessage,
	fetchedAt time.Time,
	opts Options,
) ([]byte, error) {
	if source == "" {
		return nil, &domain.ValidationError{Field: "source", Reason: "must not be empty"}
	}
	if region == "" || (opts.RegionIndependent != nil && opts.RegionIndependent(source)) {
		region = domain.RegionGlobal
	}

	store, err := Decode(ctx, data, region, opts)
	if err != nil {
		return nil, err
	}

	if store[region] == nil {
		store[region] = map[string]domain.RawEntry{}
	}
	store[region][source] = domain.RawEntry{Payload: payload, FetchedAt: fetchedAt}

	// No size limit is enforced; log the payload size for observability.
	zerolog.Ctx(ctx).Debug().
		Str("region", region).
		Str("source", source).
		Int("payload_bytes", len(payload)).
		Msg("merged raw payload")

	out, err := json.Marshal(store)
	if err != nil {
		return nil, fmt.Errorf("encode raw store: %w", err)
	}
	return out, nil
}

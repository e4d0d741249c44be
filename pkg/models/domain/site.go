package domain

import (
	"encoding/json"
	"time"
)

// RegionGlobal is the region key under which region-independent
// sources are filed.
const RegionGlobal = "global"

// RawEntry is the freshest payload fetched from one source for one region.
type RawEntry struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// RawStore is the per-site accumulation of source payloads,
// keyed by region, then by source name. Each (region, source) pair
// holds exactly one entry; regions only ever accumulate.
type RawStore map[string]map[string]RawEntry

// Latest returns the freshest entry for a source across all regions.
func (s RawStore) Latest(source string) (RawEntry, bool) {
	var best RawEntry
	found := false
	for _, sources := range s {
		entry, ok := sources[source]
		if !ok {
			continue
		}
		if !found || entry.FetchedAt.After(best.FetchedAt) {
			best = entry
			found = true
		}
	}
	return best, found
}

// Region returns the source map for a region, or nil if the region
// has never been written.
func (s RawStore) Region(region string) map[string]RawEntry {
	return s[region]
}

// Regions lists all region keys present in the store.
func (s RawStore) Regions() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Site is one analyzed domain together with everything derived from
// its raw data.
type Site struct {
	ID            string
	Raw           RawStore
	Scores        *ScoreSet
	Remediations  []RemediationItem
	Insight       *Insight
	Keywords      []string
	LastCheckedAt *time.Time
}

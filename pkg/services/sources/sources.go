package sources

import (
	"context"
	"encoding/json"
	"time"
)

// Source names. Each names one external data provider and one paid
// fetch operation.
const (
	SourceAudit       = "audit"
	SourceKeywords    = "keywords"
	SourceBacklinks   = "backlinks"
	SourceCompetitors = "competitors"
	SourceHistory     = "history"
	SourceTraffic     = "traffic"
	SourceSerp        = "serp"
)

// PrimarySource is the canonical source every scoring pass requires.
// Its absence aborts scoring; any other absent source only degrades
// the dimensions that depend on it.
const PrimarySource = SourceHistory

// RawPayload is the self-describing result of one adapter fetch. The
// merge engine files it by Source and Region.
type RawPayload struct {
	Source    string
	Region    string
	FetchedAt time.Time
	Data      json.RawMessage
}

// Adapter fetches a raw payload for one source, optionally scoped to
// a region. A nil payload without an error is treated as an upstream
// failure by the orchestrator.
type Adapter interface {
	Fetch(ctx context.Context, target, region string) (*RawPayload, error)
}

// PaidOperation describes one credit-gated fetch flow. All seven
// flows run through the same orchestrator, parameterized by this
// descriptor.
type PaidOperation struct {
	Name         string
	Cost         int
	RegionScoped bool
}

// Catalog returns the paid operations in a fixed order.
func Catalog() []PaidOperation {
	return []PaidOperation{
		{Name: SourceAudit, Cost: 1, RegionScoped: false},
		{Name: SourceKeywords, Cost: 1, RegionScoped: true},
		{Name: SourceBacklinks, Cost: 1, RegionScoped: true},
		{Name: SourceCompetitors, Cost: 2, RegionScoped: true},
		{Name: SourceHistory, Cost: 1, RegionScoped: true},
		{Name: SourceTraffic, Cost: 1, RegionScoped: true},
		{Name: SourceSerp, Cost: 2, RegionScoped: true},
	}
}

// Lookup returns the paid operation descriptor for a source name.
func Lookup(name string) (PaidOperation, bool) {
	for _, op := range Catalog() {
		if op.Name == name {
			return op, true
		}
	}
	return PaidOperation{}, false
}

// RegionIndependent reports whether a source files under the "global"
// region. Unknown sources are treated as region-scoped.
func RegionIndependent(name string) bool {
	op, ok := Lookup(name)
	return ok && !op.RegionScoped
}

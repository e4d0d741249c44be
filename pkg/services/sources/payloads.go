package sources

import (
	"encoding/json"
	"time"

	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// Typed views of the heterogeneous provider payloads. Parsing is the
// only place that deals with unknown shapes; everything downstream
// works with these structs.

type SchemaMarkup struct {
	Present bool `json:"present"`
	Errors  int  `json:"errors"`
}

type AuditData struct {
	HasSSL           bool         `json:"hasSsl"`
	HasCanonical     bool         `json:"hasCanonical"`
	BrokenLinks      int          `json:"brokenLinks"`
	LoadTimeMs       int          `json:"loadTimeMs"`
	MobileFriendly   bool         `json:"mobileFriendly"`
	Schema           SchemaMarkup `json:"schema"`
	HasPrivacyPolicy bool         `json:"hasPrivacyPolicy"`
	HasContactInfo   bool         `json:"hasContactInfo"`
	OpenGraph        bool         `json:"openGraph"`
	TwitterCard      bool         `json:"twitterCard"`
	LastModified     *time.Time   `json:"lastModified"`
}

type KeywordRank struct {
	Keyword  string  `json:"keyword"`
	Position int     `json:"position"`
	CPC      float64 `json:"cpc"`
	Volume   int     `json:"volume"`
}

type KeywordData struct {
	Keywords []KeywordRank `json:"keywords"`
}

type BacklinkData struct {
	DomainRating     int     `json:"domainRating"`
	ReferringDomains int     `json:"referringDomains"`
	ToxicRatio       float64 `json:"toxicRatio"`
	DoFollowRatio    float64 `json:"doFollowRatio"`
}

type DomainOverlap struct {
	Domain         string `json:"domain"`
	SharedKeywords int    `json:"sharedKeywords"`
}

type CompetitorData struct {
	Overlaps []DomainOverlap `json:"overlaps"`
}

type TrendPoint struct {
	Date       time.Time `json:"date"`
	Position   float64   `json:"position"`
	Visibility float64   `json:"visibility"`
}

type HistoryData struct {
	Points []TrendPoint `json:"points"`
}

type TrafficData struct {
	MonthlyVisits     int     `json:"monthlyVisits"`
	BounceRate        float64 `json:"bounceRate"`
	AvgSessionSeconds float64 `json:"avgSessionSeconds"`
}

type SerpData struct {
	Features []string `json:"features"`
}

func ParseAudit(raw json.RawMessage) (*AuditData, error) {
	return parse[AuditData](raw, SourceAudit)
}

func ParseKeywords(raw json.RawMessage) (*KeywordData, error) {
	return parse[KeywordData](raw, SourceKeywords)
}

func ParseBacklinks(raw json.RawMessage) (*BacklinkData, error) {
	return parse[BacklinkData](raw, SourceBacklinks)
}

func ParseCompetitors(raw json.RawMessage) (*CompetitorData, error) {
	return parse[CompetitorData](raw, SourceCompetitors)
}

func ParseHistory(raw json.RawMessage) (*HistoryData, error) {
	return parse[HistoryData](raw, SourceHistory)
}

func ParseTraffic(raw json.RawMessage) (*TrafficData, error) {
	return parse[TrafficData](raw, SourceTraffic)
}

func ParseSerp(raw json.RawMessage) (*SerpData, error) {
	return parse[SerpData](raw, SourceSerp)
}

func parse[T any](raw json.RawMessage, source string) (*T, error) {
	if len(raw) == 0 {
		return nil, &domain.DataIntegrityError{Detail: source + " payload is empty"}
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.DataIntegrityError{Detail: source + " payload is malformed", Err: err}
	}
	return &out, nil
}

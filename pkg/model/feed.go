package model

import "time"

// AssetClass groups tracked symbols and controls the discovery filter sent
// upstream. Classes never share directory cache entries.
type AssetClass string

const (
	ClassCrypto         AssetClass = "crypto"
	ClassEquity         AssetClass = "equity"
	ClassFX             AssetClass = "fx"
	ClassRedemptionRate AssetClass = "crypto-redemption-rate"
)

// DiscoveryFilter returns the asset_type filter value for upstream discovery
// queries. The redemption-rate class queries without a filter.
func (c AssetClass) DiscoveryFilter() string {
	if c == ClassRedemptionRate {
		return ""
	}
	return string(c)
}

// Valid reports whether c is one of the known asset classes.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassCrypto, ClassEquity, ClassFX, ClassRedemptionRate:
		return true
	}
	return false
}

// TrackedAsset is one entry in a static per-class watch list.
type TrackedAsset struct {
	Symbol string // "BASE/QUOTE", e.g. "BTC/USD"
	Name   string // display name, e.g. "Bitcoin"
}

// FeedReference links a tracked symbol to the opaque upstream feed identifier
// discovery resolved it to. Immutable once stored; a cache rebuild replaces the
// whole mapping, never individual entries.
type FeedReference struct {
	UpstreamID        string
	CanonicalSymbol   string // the symbol the reference was resolved for
	TradingViewSymbol string // upstream charting symbol, "Category.BASE/QUOTE"
	Description       string // upstream display description, may be empty
}

// NormalizedPrice is an exponent-scaled upstream price converted to decimal
// floats. Confidence shares the price's scale and is never negative.
type NormalizedPrice struct {
	Price       float64
	Confidence  float64
	PublishTime time.Time
}

// HistoryPoint is one bucket of a price series.
type HistoryPoint struct {
	Time  string  `json:"time"` // ISO-8601
	Price float64 `json:"price"`
}

// PriceFeed is the public feed record handed to callers. ID is unique per
// logical feed within one response; Symbol always contains exactly one "/".
type PriceFeed struct {
	ID                string         `json:"id"`
	Symbol            string         `json:"symbol"`
	Name              string         `json:"name"`
	BaseSymbol        string         `json:"baseSymbol,omitempty"`
	TradingViewSymbol string         `json:"tradingViewSymbol,omitempty"`
	Price             float64        `json:"price"`
	Confidence        float64        `json:"confidence"`
	Change24h         float64        `json:"change24h"`
	LastUpdated       string         `json:"lastUpdated"` // ISO-8601
	PriceHistory      []HistoryPoint `json:"priceHistory,omitempty"`

	// Set only on synthesized cross-pair feeds.
	DenominatorSymbol            string `json:"denominatorSymbol,omitempty"`
	DenominatorTradingViewSymbol string `json:"denominatorTradingViewSymbol,omitempty"`
}

// Interval selects the lookback window and bucket resolution for history
// fetches.
type Interval string

const (
	Interval24h Interval = "24h"
	Interval7d  Interval = "7d"
	Interval1m  Interval = "1m"
	Interval1y  Interval = "1y"
)

// ParseInterval maps a raw query value to a known interval, defaulting to 24h.
func ParseInterval(raw string) Interval {
	switch Interval(raw) {
	case Interval7d:
		return Interval7d
	case Interval1m:
		return Interval1m
	case Interval1y:
		return Interval1y
	default:
		return Interval24h
	}
}

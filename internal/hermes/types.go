package hermes

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Number accepts upstream numerics sent either as JSON numbers or as
// integer-in-a-string values. Malformed or absent values coerce to zero when
// read; that default is part of the contract, not an accident.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = ""
			return nil
		}
		*n = Number(s)
		return nil
	}
	*n = Number(data)
	return nil
}

// Decimal parses the raw value, returning zero for anything unparseable.
func (n Number) Decimal() decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DescriptorAttributes are the display attributes Hermes returns with a feed
// descriptor. Which symbol fields are populated varies by asset type.
type DescriptorAttributes struct {
	Symbol        string `json:"symbol"`         // "Crypto.BTC/USD"
	DisplaySymbol string `json:"display_symbol"` // "BTC/USD"
	GenericSymbol string `json:"generic_symbol"` // "BTCUSD"
	Base          string `json:"base"`
	QuoteCurrency string `json:"quote_currency"`
	Quote         string `json:"quote"`
	AssetType     string `json:"asset_type"`
	Description   string `json:"description"`
}

// FeedDescriptor is one result from the price-feed discovery endpoint.
type FeedDescriptor struct {
	ID         string               `json:"id"`
	Attributes DescriptorAttributes `json:"attributes"`
}

// PricePoint is the upstream fixed-point representation: integer mantissa and
// confidence scaled by 10^Expo.
type PricePoint struct {
	Price       Number `json:"price"`
	Conf        Number `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

// PriceUpdate pairs a feed id with its parsed price point.
type PriceUpdate struct {
	ID    string      `json:"id"`
	Price *PricePoint `json:"price"`
}

type priceUpdateResponse struct {
	Parsed []PriceUpdate `json:"parsed"`
}

package hermes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feedscope/hermes-adapter/pkg/model"
)

// NormalizePrice converts an exponent-scaled fixed-point price into decimal
// floats: price = mantissa * 10^expo, confidence on the same scale. A nil
// point yields zero price and confidence stamped with now; a missing publish
// time also falls back to now. Never fails.
func NormalizePrice(p *PricePoint, now time.Time) model.NormalizedPrice {
	if p == nil {
		return model.NormalizedPrice{PublishTime: now}
	}

	price := p.Price.Decimal().Shift(p.Expo).InexactFloat64()
	conf := p.Conf.Decimal().Shift(p.Expo).InexactFloat64()
	if conf < 0 {
		conf = 0
	}

	publishTime := now
	if p.PublishTime > 0 {
		publishTime = time.Unix(p.PublishTime, 0).UTC()
	}

	return model.NormalizedPrice{
		Price:       price,
		Confidence:  conf,
		PublishTime: publishTime,
	}
}

// Round rounds v half-up to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

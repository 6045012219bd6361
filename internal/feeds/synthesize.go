package feeds

import (
	"github.com/feedscope/hermes-adapter/internal/hermes"
	"github.com/feedscope/hermes-adapter/pkg/model"
)

// pairFromFeed extracts the normalized base/quote pair a feed represents,
// preferring the resolver-supplied base symbol over the display symbol.
func pairFromFeed(feed model.PriceFeed) (base, quote string, ok bool) {
	symbol := feed.BaseSymbol
	if symbol == "" {
		symbol = feed.Symbol
	}
	return hermes.SplitPair(symbol)
}

// Synthesize derives a cross-pair feed by dividing two USD-quoted feeds.
// Uncertainty propagates by adding relative errors; the 24h change composes
// the two percentage moves. If either input price is non-positive the division
// is unsafe and the base feed is returned unchanged.
func Synthesize(baseFeed, denominatorFeed model.PriceFeed) model.PriceFeed {
	if baseFeed.Price <= 0 || denominatorFeed.Price <= 0 {
		return baseFeed
	}

	baseToken, _, ok := pairFromFeed(baseFeed)
	if !ok {
		baseToken = hermes.NormalizeToken(baseFeed.Symbol)
	}
	denomToken, _, ok := pairFromFeed(denominatorFeed)
	if !ok {
		denomToken = hermes.NormalizeToken(denominatorFeed.Symbol)
	}

	const eps = 1e-12
	price := baseFeed.Price / denominatorFeed.Price
	confidence := price * (baseFeed.Confidence/max(baseFeed.Price, eps) +
		denominatorFeed.Confidence/max(denominatorFeed.Price, eps))

	baseChange := baseFeed.Change24h / 100
	denomChange := denominatorFeed.Change24h / 100
	change24h := ((1+baseChange)/(1+denomChange) - 1) * 100

	derived := baseFeed
	derived.ID = baseFeed.ID + "-over-" + denominatorFeed.ID
	derived.Symbol = baseToken + "/" + denomToken
	derived.Name = baseFeed.Name + " / " + denominatorFeed.Name
	derived.Price = hermes.Round(price, 8)
	derived.Confidence = hermes.Round(confidence, 8)
	derived.Change24h = hermes.Round(change24h, 2)
	derived.DenominatorSymbol = denominatorSymbol(denominatorFeed)
	derived.DenominatorTradingViewSymbol = denominatorChartSymbol(denominatorFeed)
	return derived
}

func denominatorSymbol(feed model.PriceFeed) string {
	if feed.BaseSymbol != "" {
		return feed.BaseSymbol
	}
	return feed.Symbol
}

func denominatorChartSymbol(feed model.PriceFeed) string {
	if feed.TradingViewSymbol != "" {
		return feed.TradingViewSymbol
	}
	return feed.Symbol
}

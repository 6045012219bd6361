package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedscope/hermes-adapter/pkg/model"
)

func ethFeed() model.PriceFeed {
	return model.PriceFeed{
		ID:                "eth-usd",
		Symbol:            "ETH/USD",
		Name:              "Ethereum",
		BaseSymbol:        "ETH/USD",
		TradingViewSymbol: "Crypto.ETH/USD",
		Price:             2000,
		Confidence:        5,
		Change24h:         1,
	}
}

func btcFeed() model.PriceFeed {
	return model.PriceFeed{
		ID:                "btc-usd",
		Symbol:            "BTC/USD",
		Name:              "Bitcoin",
		BaseSymbol:        "BTC/USD",
		TradingViewSymbol: "Crypto.BTC/USD",
		Price:             40000,
		Confidence:        100,
		Change24h:         2,
	}
}

func TestSynthesize_RatioFeed(t *testing.T) {
	derived := Synthesize(ethFeed(), btcFeed())

	assert.Equal(t, "eth-usd-over-btc-usd", derived.ID)
	assert.Equal(t, "ETH/BTC", derived.Symbol)
	assert.Equal(t, "Ethereum / Bitcoin", derived.Name)
	assert.Equal(t, 0.05, derived.Price)
	// 0.05 * (5/2000 + 100/40000)
	assert.Equal(t, 0.00025, derived.Confidence)
	// ((1 + 0.01) / (1 + 0.02) - 1) * 100
	assert.Equal(t, -0.98, derived.Change24h)
	assert.Equal(t, "BTC/USD", derived.DenominatorSymbol)
	assert.Equal(t, "Crypto.BTC/USD", derived.DenominatorTradingViewSymbol)
}

func TestSynthesize_DegenerateDenominatorReturnsBase(t *testing.T) {
	base := ethFeed()
	denom := btcFeed()
	denom.Price = 0

	assert.Equal(t, base, Synthesize(base, denom))

	denom.Price = -1
	assert.Equal(t, base, Synthesize(base, denom))
}

func TestSynthesize_DegenerateBaseReturnsBase(t *testing.T) {
	base := ethFeed()
	base.Price = 0
	assert.Equal(t, base, Synthesize(base, btcFeed()))
}

func TestSynthesize_ChangeComposition(t *testing.T) {
	base := ethFeed()
	denom := btcFeed()
	base.Change24h = 10
	denom.Change24h = -5

	derived := Synthesize(base, denom)
	// ((1.10 / 0.95) - 1) * 100 = 15.789473...
	assert.Equal(t, 15.79, derived.Change24h)
}

func TestSynthesize_FallsBackToNormalizedSymbolToken(t *testing.T) {
	base := ethFeed()
	base.BaseSymbol = ""
	base.Symbol = "ETHUSD" // no pair separator

	derived := Synthesize(base, btcFeed())
	assert.Equal(t, "ETHUSD/BTC", derived.Symbol)
}

package feeds

import "github.com/feedscope/hermes-adapter/pkg/model"

// Static per-class watch lists. Output ordering of GetTrackedFeeds follows
// these lists, not upstream response order.
var trackedByClass = map[model.AssetClass][]model.TrackedAsset{
	model.ClassCrypto: {
		{Symbol: "BTC/USD", Name: "Bitcoin"},
		{Symbol: "ETH/USD", Name: "Ethereum"},
		{Symbol: "SOL/USD", Name: "Solana"},
		{Symbol: "AVAX/USD", Name: "Avalanche"},
		{Symbol: "MATIC/USD", Name: "Polygon"},
		{Symbol: "ATOM/USD", Name: "Cosmos"},
		{Symbol: "DOT/USD", Name: "Polkadot"},
		{Symbol: "LINK/USD", Name: "Chainlink"},
	},
	model.ClassEquity: {
		{Symbol: "AAPL/USD", Name: "Apple"},
		{Symbol: "AMZN/USD", Name: "Amazon"},
		{Symbol: "GOOGL/USD", Name: "Alphabet"},
		{Symbol: "MSFT/USD", Name: "Microsoft"},
		{Symbol: "NVDA/USD", Name: "NVIDIA"},
		{Symbol: "TSLA/USD", Name: "Tesla"},
	},
	model.ClassFX: {
		{Symbol: "EUR/USD", Name: "Euro"},
		{Symbol: "GBP/USD", Name: "British Pound"},
		{Symbol: "AUD/USD", Name: "Australian Dollar"},
		{Symbol: "NZD/USD", Name: "New Zealand Dollar"},
		{Symbol: "USD/JPY", Name: "Japanese Yen"},
		{Symbol: "USD/CAD", Name: "Canadian Dollar"},
	},
	model.ClassRedemptionRate: {
		{Symbol: "WSTETH/ETH.RR", Name: "Wrapped stETH Redemption Rate"},
		{Symbol: "WBETH/ETH.RR", Name: "Wrapped Beacon ETH Redemption Rate"},
		{Symbol: "MSOL/SOL.RR", Name: "Marinade SOL Redemption Rate"},
	},
}

// TrackedAssets returns the static watch list for an asset class.
func TrackedAssets(class model.AssetClass) []model.TrackedAsset {
	return trackedByClass[class]
}

package hermes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"btc", "BTC"},
		{" eth ", "ETH"},
		{"w-steth", "WSTETH"},
		{"BTC/USD", "BTCUSD"},
		{"$$$", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeToken(tt.input), tt.input)
	}
}

func TestSplitPair(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		base   string
		quote  string
		wantOK bool
	}{
		{"plain pair", "BTC/USD", "BTC", "USD", true},
		{"lowercase", "eth/btc", "ETH", "BTC", true},
		{"trailing annotation ignored", "BTC/USD (spot)", "BTC", "USD", true},
		{"redemption rate suffix", "WSTETH/ETH.RR", "WSTETH", "ETHRR", true},
		{"no slash", "BTCUSD", "", "", false},
		{"empty quote", "BTC/", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, quote, ok := SplitPair(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.quote, quote)
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "btc-usd", Slugify("BTC/USD"))
	assert.Equal(t, "wsteth-eth.rr", Slugify("WSTETH/ETH.RR"))
}

func TestDisplaySymbol(t *testing.T) {
	tests := []struct {
		name     string
		desc     FeedDescriptor
		expected string
	}{
		{
			name:     "display symbol wins",
			desc:     FeedDescriptor{Attributes: DescriptorAttributes{DisplaySymbol: "BTC/USD", Base: "BTC", Quote: "EUR"}},
			expected: "BTC/USD",
		},
		{
			name:     "synthesized from base and quote_currency",
			desc:     FeedDescriptor{Attributes: DescriptorAttributes{Base: "ETH", QuoteCurrency: "USD"}},
			expected: "ETH/USD",
		},
		{
			name:     "quote fallback when quote_currency missing",
			desc:     FeedDescriptor{Attributes: DescriptorAttributes{Base: "SOL", Quote: "USD"}},
			expected: "SOL/USD",
		},
		{
			name:     "generic symbol as last pair source",
			desc:     FeedDescriptor{Attributes: DescriptorAttributes{GenericSymbol: "BTCUSD", Symbol: "Crypto.BTC/USD"}},
			expected: "BTCUSD",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplaySymbol(tt.desc))
		})
	}
}

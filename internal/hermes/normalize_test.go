package hermes

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		point     *PricePoint
		wantPrice float64
		wantConf  float64
		wantTime  time.Time
	}{
		{
			name:     "nil point yields zeros stamped now",
			point:    nil,
			wantTime: now,
		},
		{
			name:      "string mantissa with negative exponent",
			point:     &PricePoint{Price: "6712345678901", Conf: "3500000000", Expo: -8, PublishTime: 1717243200},
			wantPrice: 67123.45678901,
			wantConf:  35,
			wantTime:  time.Unix(1717243200, 0).UTC(),
		},
		{
			name:      "numeric mantissa and zero exponent",
			point:     &PricePoint{Price: "42", Conf: "1", Expo: 0, PublishTime: 1717243200},
			wantPrice: 42,
			wantConf:  1,
			wantTime:  time.Unix(1717243200, 0).UTC(),
		},
		{
			name:      "malformed mantissa degrades to zero",
			point:     &PricePoint{Price: "not-a-number", Conf: "1", Expo: -2, PublishTime: 1717243200},
			wantPrice: 0,
			wantConf:  0.01,
			wantTime:  time.Unix(1717243200, 0).UTC(),
		},
		{
			name:      "missing publish time falls back to now",
			point:     &PricePoint{Price: "100", Conf: "1", Expo: -1},
			wantPrice: 10,
			wantConf:  0.1,
			wantTime:  now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrice(tt.point, now)
			assert.InDelta(t, tt.wantPrice, got.Price, 1e-9)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantTime, got.PublishTime)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
		})
	}
}

func TestNumber_UnmarshalNeverFails(t *testing.T) {
	var p PricePoint
	require.NoError(t, json.Unmarshal([]byte(`{"price":"123","conf":456,"expo":-2}`), &p))
	assert.Equal(t, 1.23, NormalizePrice(&p, time.Now()).Price)
	assert.Equal(t, 4.56, NormalizePrice(&p, time.Now()).Confidence)

	require.NoError(t, json.Unmarshal([]byte(`{"price":null,"conf":true}`), &p))
	assert.True(t, p.Price.Decimal().IsZero())
	assert.True(t, p.Conf.Decimal().IsZero())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.05, Round(0.05000000004, 8))
	assert.Equal(t, -0.98, Round(-0.9803921568627416, 2))
	assert.Equal(t, 67123.456789, Round(67123.45678901, 6))
}

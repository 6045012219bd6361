package history

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/pkg/model"
)

func newTestFetcher(t *testing.T, handler http.Handler, now time.Time) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewFetcher(zap.NewNop(), srv.URL, nil, srv.Client())
	f.now = func() time.Time { return now }
	return f, srv
}

func TestChartSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Crypto.BTC/USD", "Crypto.BTC/USD"},
		{"Equity.US.AAPL/USD", "Equity.US.AAPL/USD"},
		{"eth/usd", "Crypto.ETH/USD"},
		{"BTC/USD (spot)", "Crypto.BTC/USD"},
		{"sol", "Crypto.SOL/USD"},
		{" w-steth ", "Crypto.WSTETH/USD"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ChartSymbol(tt.input), tt.input)
	}
}

func TestIntervalConfig(t *testing.T) {
	now := int64(1_750_000_000)
	tests := []struct {
		interval   model.Interval
		lookback   int64
		resolution string
	}{
		{model.Interval24h, 24 * 60 * 60, "15"},
		{model.Interval7d, 7 * 24 * 60 * 60, "60"},
		{model.Interval1m, 30 * 24 * 60 * 60, "240"},
		{model.Interval1y, 365 * 24 * 60 * 60, "D"},
	}
	for _, tt := range tests {
		from, resolution := intervalConfig(tt.interval, now)
		assert.Equal(t, now-tt.lookback, from, tt.interval)
		assert.Equal(t, tt.resolution, resolution, tt.interval)
	}
}

func TestGetHistory_RequestsWindowFromRequestTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	var gotQuery url.Values
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/shims/tradingview/history", r.URL.Path)
		mu.Lock()
		gotQuery = r.URL.Query()
		mu.Unlock()
		_, _ = w.Write([]byte(`{"s":"ok","t":[],"c":[]}`))
	}), now)

	_, err := f.GetHistory(context.Background(), "BTC/USD", model.Interval7d, "")
	require.NoError(t, err)

	assert.Equal(t, "Crypto.BTC/USD", gotQuery.Get("symbol"))
	assert.Equal(t, "60", gotQuery.Get("resolution"))
	assert.Equal(t, strconv.FormatInt(now.Unix(), 10), gotQuery.Get("to"))
	assert.Equal(t, strconv.FormatInt(now.Unix()-7*24*60*60, 10), gotQuery.Get("from"))
}

func TestGetHistory_ZipsAndDropsNonNumericCloses(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"t":[100,200,300,400],"c":[1.5,null,2.5]}`))
	}), now)

	points, err := f.GetHistory(context.Background(), "BTC/USD", model.Interval24h, "")
	require.NoError(t, err)

	// index 1 has a null close, index 3 has no close at all
	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(100, 0).UTC().Format(time.RFC3339), points[0].Time)
	assert.Equal(t, 1.5, points[0].Price)
	assert.Equal(t, 2.5, points[1].Price)
}

func TestGetHistory_RatioSeries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "Crypto.ETH/USD" {
			_, _ = w.Write([]byte(`{"t":[100,200,300,400],"c":[2000,2100,2200,2300]}`))
			return
		}
		// denominator series is missing ts=200 and zero at ts=400
		_, _ = w.Write([]byte(`{"t":[100,300,400],"c":[40000,44000,0]}`))
	}), now)

	points, err := f.GetHistory(context.Background(), "ETH/USD", model.Interval24h, "BTC/USD")
	require.NoError(t, err)

	require.Len(t, points, 2, "unmatched and zero-denominator points are dropped")
	assert.InDelta(t, 0.05, points[0].Price, 1e-12)
	assert.InDelta(t, 0.05, points[1].Price, 1e-12)
}

func TestGetHistory_UpstreamFailureSurfaces(t *testing.T) {
	now := time.Now()
	var calls int
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, `{"s":"error"}`)
	}), now)

	_, err := f.GetHistory(context.Background(), "BTC/USD", model.Interval24h, "")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "400 is not retryable")
}

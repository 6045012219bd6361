package history

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/internal/hermes"
	"github.com/feedscope/hermes-adapter/internal/httpclient"
	"github.com/feedscope/hermes-adapter/internal/metrics"
	"github.com/feedscope/hermes-adapter/internal/rate"
	"github.com/feedscope/hermes-adapter/pkg/model"
)

// Fetcher pulls time-bucketed close series from the upstream charting shim.
// Nothing here is cached; lookback windows are measured from request time.
type Fetcher struct {
	logger  *zap.Logger
	baseURL string
	exec    *httpclient.Executor
	now     func() time.Time
}

// NewFetcher constructs a charting-history fetcher. A nil httpClient gets a
// 10s timeout default.
func NewFetcher(logger *zap.Logger, baseURL string, rateMgr *rate.Manager, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	exec := httpclient.New(logger, rateMgr, httpClient, "benchmarks", metrics.ObserveUpstreamRequest)
	return &Fetcher{
		logger:  logger,
		baseURL: baseURL,
		exec:    exec,
		now:     time.Now,
	}
}

// intervalConfig maps an interval to its lookback start and upstream bucket
// resolution (minutes, or "D" for daily).
func intervalConfig(interval model.Interval, now int64) (from int64, resolution string) {
	switch interval {
	case model.Interval7d:
		return now - 7*24*60*60, "60"
	case model.Interval1m:
		return now - 30*24*60*60, "240"
	case model.Interval1y:
		return now - 365*24*60*60, "D"
	default:
		return now - 24*60*60, "15"
	}
}

// ChartSymbol normalizes a symbol to the upstream charting format. Fully
// qualified "Category.BASE/QUOTE" strings pass through; bare pairs get the
// Crypto category; bare tokens become "Crypto.TOKEN/USD".
func ChartSymbol(symbol string) string {
	trimmed := strings.TrimSpace(symbol)
	if strings.Contains(trimmed, ".") && strings.Contains(trimmed, "/") {
		return trimmed
	}

	primary := trimmed
	if i := strings.IndexByte(primary, ' '); i >= 0 {
		primary = primary[:i]
	}
	if strings.Contains(primary, "/") {
		return "Crypto." + strings.ToUpper(primary)
	}
	return "Crypto." + hermes.NormalizeToken(primary) + "/USD"
}

type seriesPoint struct {
	ts    int64
	price float64
}

type chartResponse struct {
	Times  []int64    `json:"t"`
	Closes []*float64 `json:"c"`
}

// fetchSeries pulls one symbol's series and zips the parallel timestamp and
// close arrays, dropping buckets without a numeric close.
func (f *Fetcher) fetchSeries(ctx context.Context, symbol string, interval model.Interval) ([]seriesPoint, error) {
	now := f.now().Unix()
	from, resolution := intervalConfig(interval, now)

	params := url.Values{}
	params.Set("symbol", ChartSymbol(symbol))
	params.Set("resolution", resolution)
	params.Set("from", fmt.Sprintf("%d", from))
	params.Set("to", fmt.Sprintf("%d", now))

	endpoint := fmt.Sprintf("%s/v1/shims/tradingview/history?%s", f.baseURL, params.Encode())
	var payload chartResponse
	if err := f.exec.GetJSON(ctx, endpoint, "benchmarks_history", &payload); err != nil {
		return nil, err
	}

	points := make([]seriesPoint, 0, len(payload.Times))
	for i, ts := range payload.Times {
		if i >= len(payload.Closes) || payload.Closes[i] == nil {
			continue
		}
		points = append(points, seriesPoint{ts: ts, price: *payload.Closes[i]})
	}
	return points, nil
}

// GetHistory returns the bucketed close series for symbol. When denominator is
// non-empty, both series are fetched concurrently and each base point is
// divided by the denominator close at the same timestamp; points without a
// matching nonzero denominator are dropped, never interpolated.
func (f *Fetcher) GetHistory(ctx context.Context, symbol string, interval model.Interval, denominator string) ([]model.HistoryPoint, error) {
	if denominator == "" {
		base, err := f.fetchSeries(ctx, symbol, interval)
		if err != nil {
			return nil, err
		}
		return toHistoryPoints(base), nil
	}

	var (
		wg       sync.WaitGroup
		base     []seriesPoint
		baseErr  error
		denom    []seriesPoint
		denomErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		base, baseErr = f.fetchSeries(ctx, symbol, interval)
	}()
	go func() {
		defer wg.Done()
		denom, denomErr = f.fetchSeries(ctx, denominator, interval)
	}()
	wg.Wait()

	if baseErr != nil {
		return nil, baseErr
	}
	if denomErr != nil {
		return nil, denomErr
	}

	denomByTs := make(map[int64]float64, len(denom))
	for _, p := range denom {
		denomByTs[p.ts] = p.price
	}

	points := make([]model.HistoryPoint, 0, len(base))
	for _, p := range base {
		d, ok := denomByTs[p.ts]
		if !ok || d == 0 {
			continue
		}
		points = append(points, model.HistoryPoint{
			Time:  time.Unix(p.ts, 0).UTC().Format(time.RFC3339),
			Price: p.price / d,
		})
	}
	return points, nil
}

func toHistoryPoints(series []seriesPoint) []model.HistoryPoint {
	points := make([]model.HistoryPoint, 0, len(series))
	for _, p := range series {
		points = append(points, model.HistoryPoint{
			Time:  time.Unix(p.ts, 0).UTC().Format(time.RFC3339),
			Price: p.price,
		})
	}
	return points
}

package hermes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/internal/httpclient"
	"github.com/feedscope/hermes-adapter/internal/metrics"
	"github.com/feedscope/hermes-adapter/internal/rate"
)

// Client wraps the Hermes v2 HTTP API: feed discovery, latest-price batches
// and historical snapshot batches. All calls go through the shared retrying
// executor.
type Client struct {
	logger  *zap.Logger
	baseURL string
	exec    *httpclient.Executor
}

// NewClient constructs a Hermes client. A nil httpClient gets a 10s timeout
// default.
func NewClient(logger *zap.Logger, baseURL string, rateMgr *rate.Manager, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	exec := httpclient.New(logger, rateMgr, httpClient, "hermes", metrics.ObserveUpstreamRequest)
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		exec:    exec,
	}
}

// DiscoverFeeds runs a free-text feed discovery query. assetType filters by
// class when non-empty; the redemption-rate class queries unfiltered.
func (c *Client) DiscoverFeeds(ctx context.Context, query, assetType string) ([]FeedDescriptor, error) {
	params := url.Values{}
	params.Set("query", query)
	if assetType != "" {
		params.Set("asset_type", assetType)
	}

	endpoint := fmt.Sprintf("%s/v2/price_feeds?%s", c.baseURL, params.Encode())
	var feeds []FeedDescriptor
	if err := c.exec.GetJSON(ctx, endpoint, "hermes_discovery", &feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

// LatestPrices fetches the current parsed price for each feed id in one
// batched call, keyed by id.
func (c *Client) LatestPrices(ctx context.Context, ids []string) (map[string]PriceUpdate, error) {
	endpoint := fmt.Sprintf("%s/v2/updates/price/latest?%s", c.baseURL, batchParams(ids).Encode())
	var payload priceUpdateResponse
	if err := c.exec.GetJSON(ctx, endpoint, "hermes_prices", &payload); err != nil {
		return nil, err
	}
	return keyByID(payload.Parsed), nil
}

// PricesAt fetches the parsed price snapshot closest to the given unix
// timestamp for each feed id. The endpoint may 404 when no snapshot exists;
// callers decide whether that is recoverable.
func (c *Client) PricesAt(ctx context.Context, ids []string, timestamp int64) (map[string]PriceUpdate, error) {
	endpoint := fmt.Sprintf("%s/v2/updates/price/%d?%s", c.baseURL, timestamp, batchParams(ids).Encode())
	var payload priceUpdateResponse
	if err := c.exec.GetJSON(ctx, endpoint, "hermes_prices", &payload); err != nil {
		return nil, err
	}
	return keyByID(payload.Parsed), nil
}

func batchParams(ids []string) url.Values {
	params := url.Values{}
	for _, id := range ids {
		params.Add("ids[]", id)
	}
	params.Set("parsed", "true")
	return params
}

func keyByID(updates []PriceUpdate) map[string]PriceUpdate {
	byID := make(map[string]PriceUpdate, len(updates))
	for _, u := range updates {
		if u.ID == "" {
			continue
		}
		byID[u.ID] = u
	}
	return byID
}

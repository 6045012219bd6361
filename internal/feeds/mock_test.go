package feeds

import (
	"context"
	"sync"

	"github.com/feedscope/hermes-adapter/internal/hermes"
)

// mockHermes implements HermesAPI with per-call hooks and counters.
type mockHermes struct {
	mu            sync.Mutex
	discoverCalls []discoverCall
	latestCalls   int
	prevCalls     int

	discoverFn func(query, assetType string) ([]hermes.FeedDescriptor, error)
	latestFn   func(ids []string) (map[string]hermes.PriceUpdate, error)
	prevFn     func(ids []string, timestamp int64) (map[string]hermes.PriceUpdate, error)
}

type discoverCall struct {
	query     string
	assetType string
}

func (m *mockHermes) DiscoverFeeds(_ context.Context, query, assetType string) ([]hermes.FeedDescriptor, error) {
	m.mu.Lock()
	m.discoverCalls = append(m.discoverCalls, discoverCall{query: query, assetType: assetType})
	m.mu.Unlock()
	if m.discoverFn == nil {
		return nil, nil
	}
	return m.discoverFn(query, assetType)
}

func (m *mockHermes) LatestPrices(_ context.Context, ids []string) (map[string]hermes.PriceUpdate, error) {
	m.mu.Lock()
	m.latestCalls++
	m.mu.Unlock()
	if m.latestFn == nil {
		return map[string]hermes.PriceUpdate{}, nil
	}
	return m.latestFn(ids)
}

func (m *mockHermes) PricesAt(_ context.Context, ids []string, timestamp int64) (map[string]hermes.PriceUpdate, error) {
	m.mu.Lock()
	m.prevCalls++
	m.mu.Unlock()
	if m.prevFn == nil {
		return map[string]hermes.PriceUpdate{}, nil
	}
	return m.prevFn(ids, timestamp)
}

func (m *mockHermes) discoverCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.discoverCalls)
}

func (m *mockHermes) discoverCountByFilter(assetType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, call := range m.discoverCalls {
		if call.assetType == assetType {
			n++
		}
	}
	return n
}

func descriptor(id, displaySymbol string) hermes.FeedDescriptor {
	return hermes.FeedDescriptor{
		ID: id,
		Attributes: hermes.DescriptorAttributes{
			DisplaySymbol: displaySymbol,
			Symbol:        "Crypto." + displaySymbol,
		},
	}
}

func update(id, price, conf string, expo int32, publishTime int64) hermes.PriceUpdate {
	return hermes.PriceUpdate{
		ID: id,
		Price: &hermes.PricePoint{
			Price:       hermes.Number(price),
			Conf:        hermes.Number(conf),
			Expo:        expo,
			PublishTime: publishTime,
		},
	}
}

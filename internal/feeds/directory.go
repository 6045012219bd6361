package feeds

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/internal/hermes"
	"github.com/feedscope/hermes-adapter/internal/metrics"
	"github.com/feedscope/hermes-adapter/pkg/model"
)

// HermesAPI is the slice of the upstream client the resolver layer consumes.
type HermesAPI interface {
	DiscoverFeeds(ctx context.Context, query, assetType string) ([]hermes.FeedDescriptor, error)
	LatestPrices(ctx context.Context, ids []string) (map[string]hermes.PriceUpdate, error)
	PricesAt(ctx context.Context, ids []string, timestamp int64) (map[string]hermes.PriceUpdate, error)
}

// directoryEntry is one immutable per-class resolution snapshot. Rebuilds
// replace the whole entry; nothing mutates bySymbol after publication.
type directoryEntry struct {
	bySymbol  map[string]model.FeedReference
	expiresAt time.Time
}

// Directory memoizes symbol-to-feed-id discovery per asset class with a TTL.
// Entries are swapped wholesale, so readers never observe a half-built
// mapping. Concurrent rebuilds of the same class are allowed to race; the
// overwrite is idempotent and the last writer wins with equally valid data.
type Directory struct {
	logger  *zap.Logger
	client  HermesAPI
	ttl     time.Duration
	now     func() time.Time
	entries sync.Map // model.AssetClass -> *directoryEntry
}

// NewDirectory creates a directory cache with the given entry TTL.
func NewDirectory(logger *zap.Logger, client HermesAPI, ttl time.Duration) *Directory {
	return &Directory{
		logger: logger,
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Resolve returns the tracked-symbol to feed-reference mapping for a class,
// rebuilding it from upstream discovery when the cached entry is missing or
// expired. Symbols with no discovery match are dropped from the mapping;
// discovery transport failures fail the rebuild.
func (d *Directory) Resolve(ctx context.Context, class model.AssetClass) (map[string]model.FeedReference, error) {
	if entry, ok := d.entries.Load(class); ok {
		e := entry.(*directoryEntry)
		if d.now().Before(e.expiresAt) {
			return e.bySymbol, nil
		}
	}

	assets := TrackedAssets(class)
	refs := make([]*model.FeedReference, len(assets))
	errs := make([]error, len(assets))

	var wg sync.WaitGroup
	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset model.TrackedAsset) {
			defer wg.Done()
			refs[i], errs[i] = d.discover(ctx, asset.Symbol, class.DiscoveryFilter())
		}(i, asset)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	bySymbol := make(map[string]model.FeedReference, len(assets))
	for _, ref := range refs {
		if ref != nil {
			bySymbol[ref.CanonicalSymbol] = *ref
		}
	}

	d.entries.Store(class, &directoryEntry{
		bySymbol:  bySymbol,
		expiresAt: d.now().Add(d.ttl),
	})
	metrics.DirectoryRebuildsTotal.WithLabelValues(string(class)).Inc()
	d.logger.Info("feeds.directory_rebuilt",
		zap.String("class", string(class)),
		zap.Int("tracked", len(assets)),
		zap.Int("resolved", len(bySymbol)))

	return bySymbol, nil
}

// discover runs one free-text discovery query and selects the best
// descriptor: an exact normalized-symbol match when one exists, otherwise the
// first result. A nil reference with nil error means no match.
func (d *Directory) discover(ctx context.Context, symbol, assetType string) (*model.FeedReference, error) {
	descriptors, err := d.client.DiscoverFeeds(ctx, symbol, assetType)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		d.logger.Warn("feeds.discovery_empty", zap.String("symbol", symbol))
		return nil, nil
	}

	match := pickMatching(descriptors, symbol)
	return &model.FeedReference{
		UpstreamID:        match.ID,
		CanonicalSymbol:   symbol,
		TradingViewSymbol: match.Attributes.Symbol,
		Description:       match.Attributes.Description,
	}, nil
}

func pickMatching(descriptors []hermes.FeedDescriptor, symbol string) hermes.FeedDescriptor {
	target := hermes.NormalizeSymbol(symbol)
	for _, d := range descriptors {
		for _, candidate := range hermes.MatchCandidates(d) {
			if hermes.NormalizeSymbol(candidate) == target {
				return d
			}
		}
	}
	return descriptors[0]
}

package feeds

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/internal/hermes"
	"github.com/feedscope/hermes-adapter/pkg/model"
)

// Service assembles public feed records from the directory cache and freshly
// fetched upstream prices. Each request computes its own view; the only shared
// state is the directory.
type Service struct {
	logger    *zap.Logger
	client    HermesAPI
	directory *Directory
	now       func() time.Time
}

// NewService constructs the aggregation service.
func NewService(logger *zap.Logger, client HermesAPI, directory *Directory) *Service {
	return &Service{
		logger:    logger,
		client:    client,
		directory: directory,
		now:       time.Now,
	}
}

// GetTrackedFeeds returns one PriceFeed per resolvable tracked asset in the
// class, in watch-list order. The latest snapshot is required; the day-ago
// snapshot is best-effort — any failure there (including the common 404 for
// missing historical data) degrades to change24h == 0 rather than failing the
// batch.
func (s *Service) GetTrackedFeeds(ctx context.Context, class model.AssetClass) ([]model.PriceFeed, error) {
	refs, err := s.directory.Resolve(ctx, class)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return []model.PriceFeed{}, nil
	}

	assets := TrackedAssets(class)
	ids := make([]string, 0, len(refs))
	for _, asset := range assets {
		if ref, ok := refs[asset.Symbol]; ok {
			ids = append(ids, ref.UpstreamID)
		}
	}

	now := s.now()
	dayAgo := now.Unix() - 24*60*60

	var (
		wg         sync.WaitGroup
		latestByID map[string]hermes.PriceUpdate
		latestErr  error
		prevByID   map[string]hermes.PriceUpdate
		prevErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		latestByID, latestErr = s.client.LatestPrices(ctx, ids)
	}()
	go func() {
		defer wg.Done()
		prevByID, prevErr = s.client.PricesAt(ctx, ids, dayAgo)
	}()
	wg.Wait()

	if latestErr != nil {
		return nil, latestErr
	}
	if prevErr != nil {
		s.logger.Warn("feeds.day_ago_unavailable",
			zap.String("class", string(class)),
			zap.Error(prevErr))
		prevByID = map[string]hermes.PriceUpdate{}
	}

	feeds := make([]model.PriceFeed, 0, len(assets))
	for _, asset := range assets {
		ref, ok := refs[asset.Symbol]
		if !ok {
			continue
		}
		latestEntry, ok := latestByID[ref.UpstreamID]
		if !ok {
			continue
		}

		latest := hermes.NormalizePrice(latestEntry.Price, now)
		var previous model.NormalizedPrice
		if prevEntry, ok := prevByID[ref.UpstreamID]; ok {
			previous = hermes.NormalizePrice(prevEntry.Price, now)
		}

		change24h := 0.0
		if previous.Price > 0 {
			change24h = (latest.Price - previous.Price) / previous.Price * 100
		}

		feeds = append(feeds, model.PriceFeed{
			ID:                hermes.Slugify(asset.Symbol),
			Symbol:            asset.Symbol,
			Name:              asset.Name,
			BaseSymbol:        asset.Symbol,
			TradingViewSymbol: ref.TradingViewSymbol,
			Price:             hermes.Round(latest.Price, 6),
			Confidence:        hermes.Round(latest.Confidence, 6),
			Change24h:         hermes.Round(change24h, 2),
			LastUpdated:       latest.PublishTime.UTC().Format(time.RFC3339),
			PriceHistory:      placeholderHistory(latest.Price, now),
		})
	}

	return feeds, nil
}

// placeholderHistory fabricates a 25-point hourly series as small random
// perturbations around the current price. The upstream latest-price endpoint
// carries no intraday series, so this exists purely so sparkline consumers
// have something to draw. The values are NOT real history; anything that needs
// genuine data must use the history fetcher instead.
func placeholderHistory(currentPrice float64, now time.Time) []model.HistoryPoint {
	points := make([]model.HistoryPoint, 0, 25)
	for i := 24; i >= 0; i-- {
		t := now.Add(-time.Duration(i) * time.Hour)
		variance := (rand.Float64() - 0.5) * 0.03
		points = append(points, model.HistoryPoint{
			Time:  t.UTC().Format(time.RFC3339),
			Price: hermes.Round(currentPrice*(1+variance), 4),
		})
	}
	return points
}

package feeds

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/internal/hermes"
	"github.com/feedscope/hermes-adapter/pkg/model"
)

const (
	pairLookupLimit     = 8
	defaultSearchLimit  = 12
	fallbackSearchLimit = 24
)

// Search resolves an ad hoc query into feed records. Two shapes are handled:
// "BASE/QUOTE" pair queries, which resolve each leg against USD and synthesize
// a ratio feed for non-USD quotes, and free-text queries, which merge a
// USD-restricted and an unrestricted discovery pass, then rank and dedupe.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]model.PriceFeed, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.PriceFeed{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if base, denominator, ok := splitPairQuery(query); ok {
		return s.searchPair(ctx, base, denominator)
	}
	return s.searchFreeText(ctx, query, limit)
}

// splitPairQuery recognizes "A/B" queries: exactly one slash with non-empty
// tokens on both sides.
func splitPairQuery(query string) (base, denominator string, ok bool) {
	parts := strings.Split(query, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	base = hermes.NormalizeToken(parts[0])
	denominator = hermes.NormalizeToken(parts[1])
	if base == "" || denominator == "" {
		return "", "", false
	}
	return base, denominator, true
}

func (s *Service) searchPair(ctx context.Context, base, denominator string) ([]model.PriceFeed, error) {
	var (
		wg              wgErr
		baseCandidates  []model.PriceFeed
		denomCandidates []model.PriceFeed
		trackedCrypto   []model.PriceFeed
	)
	wg.Go(func() error {
		var err error
		baseCandidates, err = s.searchFeeds(ctx, base+"/USD", pairLookupLimit)
		return err
	})
	if denominator != "USD" {
		wg.Go(func() error {
			var err error
			denomCandidates, err = s.searchFeeds(ctx, denominator+"/USD", pairLookupLimit)
			return err
		})
	}
	wg.Go(func() error {
		// Best-effort: a tracked-list failure must not sink the pair lookup.
		feeds, err := s.GetTrackedFeeds(ctx, model.ClassCrypto)
		if err != nil {
			s.logger.Warn("feeds.search_tracked_unavailable", zap.Error(err))
			return nil
		}
		trackedCrypto = feeds
		return nil
	})
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	baseFeed := s.resolveUSDFeed(ctx, base, baseCandidates, trackedCrypto)
	if baseFeed == nil {
		return []model.PriceFeed{}, nil
	}

	// A/USD needs no synthesis; the resolved feed is already USD-quoted.
	if denominator == "USD" {
		return []model.PriceFeed{*baseFeed}, nil
	}

	denomFeed := s.resolveUSDFeed(ctx, denominator, denomCandidates, trackedCrypto)
	if denomFeed == nil {
		return []model.PriceFeed{}, nil
	}

	return []model.PriceFeed{Synthesize(*baseFeed, *denomFeed)}, nil
}

// resolveUSDFeed finds the USD-quoted feed for a base token: the tracked
// crypto canonical list first, then the token's "X/USD" discovery candidates,
// then one last unrestricted discovery pass. The final pass is best-effort
// and swallows its own error.
func (s *Service) resolveUSDFeed(ctx context.Context, base string, candidates, tracked []model.PriceFeed) *model.PriceFeed {
	if feed := findExactUSDFeed(tracked, base); feed != nil {
		return feed
	}
	if feed := findExactUSDFeed(candidates, base); feed != nil {
		return feed
	}

	fallback, err := s.searchFeeds(ctx, base, fallbackSearchLimit)
	if err != nil {
		s.logger.Warn("feeds.search_fallback_unavailable",
			zap.String("base", base),
			zap.Error(err))
		return nil
	}
	return findExactUSDFeed(fallback, base)
}

func (s *Service) searchFreeText(ctx context.Context, query string, limit int) ([]model.PriceFeed, error) {
	normalized := hermes.NormalizeToken(query)
	if normalized == "" {
		raw, err := s.searchFeeds(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return truncate(sortFeedsForQuery(raw, query), limit), nil
	}

	var (
		wg            wgErr
		usdFeeds      []model.PriceFeed
		fallbackFeeds []model.PriceFeed
	)
	wg.Go(func() error {
		var err error
		usdFeeds, err = s.searchFeeds(ctx, normalized+"/USD", defaultSearchLimit)
		return err
	})
	wg.Go(func() error {
		var err error
		fallbackFeeds, err = s.searchFeeds(ctx, normalized, fallbackSearchLimit)
		return err
	})
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	merged := dedupeFeeds(append(usdFeeds, fallbackFeeds...))
	usdOnly := filterUSDQuoted(merged)
	if len(usdOnly) > 0 {
		merged = usdOnly
	}
	results := sortFeedsForQuery(merged, normalized)

	if !hasExactUSDBase(results, normalized) {
		results = s.prependTrackedCanonical(ctx, results, normalized)
	}

	return truncate(results, limit), nil
}

// prependTrackedCanonical is the documented best-effort stage: it tries to
// surface the tracked-crypto canonical feed for the query token, and on any
// failure discards its own error and returns the prior results untouched.
func (s *Service) prependTrackedCanonical(ctx context.Context, results []model.PriceFeed, normalized string) []model.PriceFeed {
	tracked, err := s.GetTrackedFeeds(ctx, model.ClassCrypto)
	if err != nil {
		s.logger.Warn("feeds.search_canonical_unavailable", zap.Error(err))
		return results
	}
	canonical := findExactUSDFeed(tracked, normalized)
	if canonical == nil {
		return results
	}
	merged := dedupeFeeds(append([]model.PriceFeed{*canonical}, results...))
	return sortFeedsForQuery(merged, normalized)
}

// searchFeeds turns one discovery query into priced feed records: discover
// descriptors, then fetch latest and day-ago snapshots for them in parallel.
// Day-ago failures degrade to change24h == 0.
func (s *Service) searchFeeds(ctx context.Context, query string, limit int) ([]model.PriceFeed, error) {
	descriptors, err := s.client.DiscoverFeeds(ctx, query, "")
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return []model.PriceFeed{}, nil
	}
	if len(descriptors) > limit {
		descriptors = descriptors[:limit]
	}

	ids := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if d.ID != "" {
			ids = append(ids, d.ID)
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
		s.logger.Warn("feeds.search_day_ago_unavailable", zap.Error(prevErr))
		prevByID = map[string]hermes.PriceUpdate{}
	}

	feeds := make([]model.PriceFeed, 0, len(descriptors))
	for _, d := range descriptors {
		if d.ID == "" {
			continue
		}
		latestEntry, ok := latestByID[d.ID]
		if !ok {
			continue
		}

		latest := hermes.NormalizePrice(latestEntry.Price, now)
		var previous model.NormalizedPrice
		if prevEntry, ok := prevByID[d.ID]; ok {
			previous = hermes.NormalizePrice(prevEntry.Price, now)
		}

		change24h := 0.0
		if previous.Price > 0 {
			change24h = (latest.Price - previous.Price) / previous.Price * 100
		}

		symbol := hermes.DisplaySymbol(d)
		name := d.Attributes.Description
		if name == "" {
			name = symbol
		}
		feeds = append(feeds, model.PriceFeed{
			ID:                d.ID,
			Symbol:            symbol,
			Name:              name,
			BaseSymbol:        symbol,
			TradingViewSymbol: d.Attributes.Symbol,
			Price:             hermes.Round(latest.Price, 6),
			Confidence:        hermes.Round(latest.Confidence, 6),
			Change24h:         hermes.Round(change24h, 2),
			LastUpdated:       latest.PublishTime.UTC().Format(time.RFC3339),
		})
	}

	return feeds, nil
}

// rankFeedForQuery buckets a candidate: 0 exact base + USD quote, 1 exact
// base, 2 base contains the token, 3 name contains the token, 4 everything
// else (including feeds without a valid pair).
func rankFeedForQuery(feed model.PriceFeed, normalizedQuery string) int {
	base, quote, ok := pairFromFeed(feed)
	if !ok {
		return 4
	}
	switch {
	case base == normalizedQuery && quote == "USD":
		return 0
	case base == normalizedQuery:
		return 1
	case strings.Contains(base, normalizedQuery):
		return 2
	case strings.Contains(strings.ToUpper(feed.Name), normalizedQuery):
		return 3
	}
	return 4
}

func sortFeedsForQuery(feeds []model.PriceFeed, query string) []model.PriceFeed {
	normalizedQuery := hermes.NormalizeToken(query)
	if normalizedQuery == "" {
		return feeds
	}

	sorted := make([]model.PriceFeed, len(feeds))
	copy(sorted, feeds)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rankFeedForQuery(sorted[i], normalizedQuery), rankFeedForQuery(sorted[j], normalizedQuery)
		if ri != rj {
			return ri < rj
		}
		_, qi, _ := pairFromFeed(sorted[i])
		_, qj, _ := pairFromFeed(sorted[j])
		if (qi == "USD") != (qj == "USD") {
			return qi == "USD"
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	return sorted
}

func dedupeFeeds(feeds []model.PriceFeed) []model.PriceFeed {
	seen := make(map[string]bool, len(feeds))
	unique := make([]model.PriceFeed, 0, len(feeds))
	for _, feed := range feeds {
		key := feed.ID + ":" + feed.Symbol
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, feed)
	}
	return unique
}

func filterUSDQuoted(feeds []model.PriceFeed) []model.PriceFeed {
	usd := make([]model.PriceFeed, 0, len(feeds))
	for _, feed := range feeds {
		if _, quote, ok := pairFromFeed(feed); ok && quote == "USD" {
			usd = append(usd, feed)
		}
	}
	return usd
}

func hasExactUSDBase(feeds []model.PriceFeed, normalizedBase string) bool {
	return findExactUSDFeed(feeds, normalizedBase) != nil
}

func findExactUSDFeed(feeds []model.PriceFeed, base string) *model.PriceFeed {
	normalizedBase := hermes.NormalizeToken(base)
	for i := range feeds {
		if b, quote, ok := pairFromFeed(feeds[i]); ok && b == normalizedBase && quote == "USD" {
			return &feeds[i]
		}
	}
	return nil
}

func truncate(feeds []model.PriceFeed, limit int) []model.PriceFeed {
	if limit > 0 && len(feeds) > limit {
		return feeds[:limit]
	}
	return feeds
}

// wgErr runs a group of goroutines and keeps the first error. Sibling
// branches always run to completion; nothing cancels a branch because another
// failed.
type wgErr struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	err  error
	once bool
}

func (g *wgErr) Go(fn func() error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := fn(); err != nil {
			g.mu.Lock()
			if !g.once {
				g.err = err
				g.once = true
			}
			g.mu.Unlock()
		}
	}()
}

func (g *wgErr) Wait() error {
	g.wg.Wait()
	return g.err
}

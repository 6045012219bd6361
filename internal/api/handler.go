package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/feedscope/hermes-adapter/internal/feeds"
	"github.com/feedscope/hermes-adapter/internal/history"
	"github.com/feedscope/hermes-adapter/pkg/model"
)

const requestTimeout = 30 * time.Second

// Handler serves the caller-facing JSON routes. Upstream failures map to 502
// with an empty result body; callers render an empty state rather than crash.
type Handler struct {
	Logger  *zap.Logger
	Feeds   *feeds.Service
	History *history.Fetcher
}

func NewHandler(logger *zap.Logger, feedSvc *feeds.Service, historyFetcher *history.Fetcher) *Handler {
	return &Handler{Logger: logger, Feeds: feedSvc, History: historyFetcher}
}

// GET /api/v1/feeds?class=crypto
func (h *Handler) GetFeeds(c *fiber.Ctx) error {
	class := model.AssetClass(c.Query("class", string(model.ClassCrypto)))
	if !class.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"feeds": []model.PriceFeed{},
			"error": "unknown asset class: " + string(class),
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	result, err := h.Feeds.GetTrackedFeeds(ctx, class)
	if err != nil {
		h.Logger.Error("api.feeds_failed",
			zap.String("class", string(class)),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"feeds": []model.PriceFeed{},
			"error": "failed to fetch feed data",
		})
	}

	return c.JSON(fiber.Map{
		"feeds":  result,
		"source": "pyth-hermes-v2",
	})
}

// GET /api/v1/search?q=eth/btc&limit=12
func (h *Handler) SearchFeeds(c *fiber.Ctx) error {
	query := c.Query("q")
	limit := c.QueryInt("limit", 0)

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	result, err := h.Feeds.Search(ctx, query, limit)
	if err != nil {
		h.Logger.Error("api.search_failed",
			zap.String("query", query),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"feeds": []model.PriceFeed{},
			"error": "failed to search feed data",
		})
	}

	return c.JSON(fiber.Map{"feeds": result})
}

// GET /api/v1/history?symbol=BTC/USD&interval=7d&denominator_symbol=ETH/USD
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	symbol := c.Query("symbol")
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"points": []model.HistoryPoint{},
			"error":  "missing symbol query parameter",
		})
	}
	interval := model.ParseInterval(c.Query("interval", string(model.Interval24h)))
	denominator := c.Query("denominator_symbol")

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	points, err := h.History.GetHistory(ctx, symbol, interval, denominator)
	if err != nil {
		h.Logger.Error("api.history_failed",
			zap.String("symbol", symbol),
			zap.String("interval", string(interval)),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"points":  []model.HistoryPoint{},
			"error":   "failed to fetch history data",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"points": points})
}

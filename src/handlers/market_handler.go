package handlers

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"market-sim/src/models"
	"market-sim/src/sim"
)

// MarketHandler serves the read-only inspection endpoints over a running
// simulation. It keeps a bounded buffer of recent trades fed by the tick
// loop through Record.
type MarketHandler struct {
	Market     *sim.Market
	Instrument string
	StartTime  time.Time

	mu             sync.RWMutex
	recent         []models.TradeInfo
	maxRecent      int
	tradesExecuted int64
	volumeTraded   int64
}

func NewMarketHandler(market *sim.Market, instrument string) *MarketHandler {
	maxRecent := 200
	if env := os.Getenv("TRADES_BUFFER_SIZE"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
			maxRecent = parsed
		}
	}

	return &MarketHandler{
		Market:     market,
		Instrument: instrument,
		StartTime:  time.Now(),
		recent:     make([]models.TradeInfo, 0, maxRecent),
		maxRecent:  maxRecent,
	}
}

// Record folds one tick result into the trade buffer and counters. Called by
// the simulation loop after every tick.
func (h *MarketHandler) Record(result sim.TickResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, trade := range result.Trades {
		h.recent = append(h.recent, models.TradeInfo{
			TradeID:     trade.TradeID,
			Price:       trade.Price,
			Quantity:    trade.Quantity,
			BuyOrderID:  trade.BuyOrderID,
			SellOrderID: trade.SellOrderID,
			Tick:        result.Tick,
		})
	}
	// edge case: keep the buffer bounded by dropping the oldest trades
	if len(h.recent) > h.maxRecent {
		h.recent = h.recent[len(h.recent)-h.maxRecent:]
	}

	h.tradesExecuted += int64(len(result.Trades))
	h.volumeTraded += result.Volume

	log.Debug().
		Int("tick", result.Tick).
		Float64("sentiment", result.Sentiment).
		Int("trades", len(result.Trades)).
		Int64("volume", result.Volume).
		Msg("Tick recorded")
}

func (h *MarketHandler) GetOrderBook(c *fiber.Ctx) error {
	defaultDepth := 10
	maxDepth := 100
	if env := os.Getenv("ORDERBOOK_MAX_DEPTH"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
			maxDepth = parsed
		}
	}

	depth, err := strconv.Atoi(c.Query("depth", strconv.Itoa(defaultDepth)))
	if err != nil || depth <= 0 {
		depth = defaultDepth
	}
	if depth > maxDepth {
		depth = maxDepth
	}

	bids, asks := h.Market.Book().Depth(depth)

	response := models.OrderBookResponse{
		Instrument: h.Instrument,
		Tick:       h.Market.CurrentTick(),
		Bids:       make([]models.PriceLevelInfo, 0, len(bids)),
		Asks:       make([]models.PriceLevelInfo, 0, len(asks)),
	}
	for _, level := range bids {
		response.Bids = append(response.Bids, models.PriceLevelInfo{Price: level.Price, Quantity: level.Quantity})
	}
	for _, level := range asks {
		response.Asks = append(response.Asks, models.PriceLevelInfo{Price: level.Price, Quantity: level.Quantity})
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *MarketHandler) GetState(c *fiber.Ctx) error {
	state := h.Market.State()

	return c.Status(fiber.StatusOK).JSON(models.MarketStateResponse{
		Tick:             state.Tick,
		MidPrice:         state.MidPrice,
		Spread:           state.Spread,
		BestBid:          state.BestBid,
		BestAsk:          state.BestAsk,
		Sentiment:        state.Sentiment,
		RemainingProduct: state.RemainingProduct,
		Volumes:          state.Volumes,
		Observation:      h.Market.Observation(),
	})
}

func (h *MarketHandler) GetTrades(c *fiber.Ctx) error {
	h.mu.RLock()
	trades := make([]models.TradeInfo, len(h.recent))
	copy(trades, h.recent)
	h.mu.RUnlock()

	return c.Status(fiber.StatusOK).JSON(models.TradesResponse{
		Count:  len(trades),
		Trades: trades,
	})
}

func (h *MarketHandler) GetSeries(c *fiber.Ctx) error {
	mid, spread := h.Market.Series()
	return c.Status(fiber.StatusOK).JSON(models.SeriesResponse{
		MidPrice: mid,
		Spread:   spread,
	})
}

func (h *MarketHandler) HealthCheck(c *fiber.Ctx) error {
	h.mu.RLock()
	trades := h.tradesExecuted
	volume := h.volumeTraded
	h.mu.RUnlock()

	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:         "healthy",
		UptimeSeconds:  int64(time.Since(h.StartTime).Seconds()),
		TicksCompleted: h.Market.CurrentTick(),
		OrdersInBook:   h.Market.Book().OpenOrders(),
		TradesExecuted: trades,
		VolumeTraded:   volume,
	})
}

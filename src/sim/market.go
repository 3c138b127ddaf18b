package sim

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"market-sim/src/engine"
	"market-sim/src/traders"
)

const agentOwner = "agent"

// TickResult is everything one simulated tick produced. Trades are the full
// executed list for the tick; callers that need every fill must consume the
// result before ticking again.
type TickResult struct {
	Tick      int
	Sentiment float64
	Trades    []engine.Trade
	Volume    int64
}

// agentOrder is one open agent-submitted limit order awaiting fill or expiry.
type agentOrder struct {
	Side        engine.Side
	Price       int64
	Quantity    int64
	SubmittedAt int
}

// Market owns the book, the trader roster and the derived state, and drives
// the simulation one tick at a time. The tick loop is single-threaded; the
// mutex only shields the derived state and ledger from concurrent readers
// (the HTTP surface).
type Market struct {
	mu     sync.RWMutex
	cfg    Config
	book   *engine.Book
	roster []traders.Trader
	rng    *rand.Rand
	logger zerolog.Logger

	cursor           int // next signal index
	state            State
	remainingProduct int64
	volumes          []int64
	ledger           map[int64]agentOrder
	midSeries        []float64
	spreadSeries     []float64
}

func New(cfg Config) *Market {
	if cfg.VolumeLookback <= 0 {
		cfg.VolumeLookback = 5
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	m := &Market{
		cfg:              cfg,
		book:             engine.NewBook(),
		rng:              rng,
		logger:           log.With().Str("component", "market").Logger(),
		remainingProduct: cfg.InitialProduct,
		ledger:           make(map[int64]agentOrder),
	}
	m.roster = buildRoster(cfg, rng)
	// fixed, reproducible trader order for the whole run
	rng.Shuffle(len(m.roster), func(i, j int) {
		m.roster[i], m.roster[j] = m.roster[j], m.roster[i]
	})
	m.state = State{RemainingProduct: cfg.InitialProduct}

	m.logger.Info().
		Int("traders", len(m.roster)).
		Int("signal_ticks", len(cfg.Signal)).
		Int64("initial_product", cfg.InitialProduct).
		Int("order_lifetime", cfg.OrderLifetime).
		Msg("Market initialized")

	return m
}

func buildRoster(cfg Config, rng *rand.Rand) []traders.Trader {
	roster := make([]traders.Trader, 0,
		cfg.NoiseTraders+cfg.MarketMakers+cfg.LiquidityTakers+
			cfg.SentimentMarketMakers+cfg.SentimentLiquidityTakers)

	for i := 0; i < cfg.NoiseTraders; i++ {
		roster = append(roster, traders.NewNoiseTrader(len(roster), rng))
	}
	for i := 0; i < cfg.MarketMakers; i++ {
		roster = append(roster, traders.NewMarketMaker(len(roster), rng))
	}
	for i := 0; i < cfg.LiquidityTakers; i++ {
		roster = append(roster, traders.NewLiquidityTaker(len(roster), rng))
	}
	for i := 0; i < cfg.SentimentMarketMakers; i++ {
		roster = append(roster, traders.NewSentimentMarketMaker(len(roster), rng))
	}
	for i := 0; i < cfg.SentimentLiquidityTakers; i++ {
		roster = append(roster, traders.NewSentimentLiquidityTaker(len(roster), rng))
	}
	return roster
}

// Tick advances simulated time by one step: it consumes the next sentiment
// value, lets every trader act in the fixed roster order (each trader sees
// the book as left by its predecessors), and recomputes the derived state
// from the post-tick book and the tick's aggregate traded volume. Returns
// false once the signal sequence is exhausted.
func (m *Market) Tick() (TickResult, bool) {
	m.mu.Lock()
	if m.cursor >= len(m.cfg.Signal) {
		m.mu.Unlock()
		return TickResult{}, false
	}
	tick := m.cursor
	sentiment := m.cfg.Signal[tick]
	m.cursor++
	m.mu.Unlock()

	m.book.SetTime(int64(tick))

	var trades []engine.Trade
	var volume int64
	for _, trader := range m.roster {
		for _, intent := range trader.Act(m.book, sentiment) {
			executed, err := m.apply(trader.ID(), intent)
			if err != nil {
				m.logger.Warn().
					Err(err).
					Int("trader_id", trader.ID()).
					Str("kind", string(intent.Kind)).
					Msg("Dropping invalid trader intent")
				continue
			}
			trades = append(trades, executed...)
			for _, trade := range executed {
				volume += trade.Quantity
			}
		}
		trader.Update(m.book)
	}

	m.mu.Lock()
	m.volumes = append(m.volumes, volume)
	if len(m.volumes) > m.cfg.VolumeLookback {
		m.volumes = m.volumes[len(m.volumes)-m.cfg.VolumeLookback:]
	}
	m.state = m.snapshotLocked(tick, sentiment)
	m.midSeries = append(m.midSeries, zeroUnless(m.state.MidPrice, m.state.HasMid))
	m.spreadSeries = append(m.spreadSeries, zeroUnless(float64(m.state.Spread), m.state.HasSpread))
	m.mu.Unlock()

	return TickResult{Tick: tick, Sentiment: sentiment, Trades: trades, Volume: volume}, true
}

func (m *Market) apply(traderID int, intent traders.Intent) ([]engine.Trade, error) {
	owner := fmt.Sprintf("trader-%d", traderID)
	switch intent.Kind {
	case engine.KindLimit:
		_, trades, err := m.book.SubmitLimit(owner, intent.Side, intent.Price, intent.Quantity)
		return trades, err
	case engine.KindMarket:
		_, trades, err := m.book.SubmitMarket(owner, intent.Side, intent.Quantity)
		return trades, err
	}
	return nil, fmt.Errorf("unknown intent kind %q", intent.Kind)
}

// snapshotLocked recomputes the state from scratch; callers hold m.mu.
func (m *Market) snapshotLocked(tick int, sentiment float64) State {
	s := State{
		Tick:             tick,
		Sentiment:        sentiment,
		RemainingProduct: m.remainingProduct,
		Volumes:          append([]int64(nil), m.volumes...),
	}
	s.MidPrice, s.HasMid = m.book.MidPrice()
	s.Spread, s.HasSpread = m.book.Spread()
	s.BestBid, s.HasBid = m.book.BestBid()
	s.BestAsk, s.HasAsk = m.book.BestAsk()
	return s
}

// SubmitAgentOrder applies an out-of-band order from the external agent.
// Limit orders commit their full quantity against the remaining product and
// are tracked in the ledger until filled or expired; market orders consume
// product only for what actually executed and are resolved immediately.
// Every call also sweeps the ledger for expired orders, cancelling the
// resting remainder and crediting it back to the remaining product.
func (m *Market) SubmitAgentOrder(kind engine.OrderKind, side engine.Side, price, quantity int64) (int64, []engine.Trade, error) {
	m.mu.RLock()
	tick := m.cursor
	m.mu.RUnlock()
	m.book.SetTime(int64(tick))

	switch kind {
	case engine.KindMarket:
		id, trades, err := m.book.SubmitMarket(agentOwner, side, quantity)
		if err != nil {
			return 0, nil, err
		}
		var executed int64
		for _, trade := range trades {
			executed += trade.Quantity
		}
		m.mu.Lock()
		m.remainingProduct -= executed
		m.expireLocked(tick)
		m.state.RemainingProduct = m.remainingProduct
		m.mu.Unlock()

		m.logger.Info().
			Int64("order_id", id).
			Str("side", string(side)).
			Int64("executed", executed).
			Int("tick", tick).
			Msg("Agent market order")
		return id, trades, nil

	case engine.KindLimit:
		id, trades, err := m.book.SubmitLimit(agentOwner, side, price, quantity)
		if err != nil {
			return 0, nil, err
		}
		m.mu.Lock()
		m.remainingProduct -= quantity
		m.ledger[id] = agentOrder{Side: side, Price: price, Quantity: quantity, SubmittedAt: tick}
		m.expireLocked(tick)
		m.state.RemainingProduct = m.remainingProduct
		m.mu.Unlock()

		m.logger.Info().
			Int64("order_id", id).
			Str("side", string(side)).
			Int64("price", price).
			Int64("quantity", quantity).
			Int("tick", tick).
			Msg("Agent limit order")
		return id, trades, nil
	}

	return 0, nil, fmt.Errorf("unsupported agent order kind %q", kind)
}

// expireLocked retires ledger entries past their lifetime. The resting book
// order, if any, is cancelled and only its still-resting quantity credited
// back; quantity that already executed stays consumed. Callers hold m.mu.
func (m *Market) expireLocked(tick int) {
	for id, entry := range m.ledger {
		if tick-entry.SubmittedAt <= m.cfg.OrderLifetime {
			continue
		}
		var credited int64
		if resting, ok := m.book.Resting(id); ok {
			m.book.Cancel(id)
			credited = resting.Quantity
			m.remainingProduct += credited
		}
		delete(m.ledger, id)
		m.logger.Debug().
			Int64("order_id", id).
			Int("submitted_at", entry.SubmittedAt).
			Int64("credited", credited).
			Msg("Agent order expired")
	}
}

// Book exposes the order book for read-only inspection.
func (m *Market) Book() *engine.Book { return m.book }

// State returns a copy of the latest per-tick snapshot.
func (m *Market) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	s.Volumes = append([]int64(nil), m.state.Volumes...)
	s.RemainingProduct = m.remainingProduct
	return s
}

// Observation regenerates the agent's observation vector from the current
// state; it is never cached.
func (m *Market) Observation() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	s.RemainingProduct = m.remainingProduct
	return s.observation(m.cfg.VolumeLookback)
}

func (m *Market) RemainingProduct() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remainingProduct
}

// OpenAgentOrders counts ledger entries not yet filled or expired.
func (m *Market) OpenAgentOrders() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ledger)
}

// Truncated reports whether the sentiment sequence is exhausted.
func (m *Market) Truncated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor >= len(m.cfg.Signal)
}

// CurrentTick is the number of completed ticks.
func (m *Market) CurrentTick() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor
}

// Series returns the per-tick mid price and spread histories (zero where the
// book had an empty side).
func (m *Market) Series() (mid, spread []float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]float64(nil), m.midSeries...), append([]float64(nil), m.spreadSeries...)
}

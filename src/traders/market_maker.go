package traders

import (
	"math/rand"

	"market-sim/src/engine"
)

// MarketMaker quotes both sides around the mid price. The quoted spread
// follows the observed book spread with a floor, and both quotes are shifted
// against the maker's inventory so a long book leans into selling. Each side
// is gated by a per-tick probability to avoid quote-flooding.
type MarketMaker struct {
	id           int
	rng          *rand.Rand
	riskAversion float64
	inventory    int64
	quantity     int64
	orderProb    float64
	minSpread    float64
}

func NewMarketMaker(id int, rng *rand.Rand) *MarketMaker {
	return &MarketMaker{
		id:           id,
		rng:          rng,
		riskAversion: 0.1,
		quantity:     10,
		orderProb:    0.8,
		minSpread:    10,
	}
}

func (m *MarketMaker) ID() int { return m.id }

func (m *MarketMaker) Act(book *engine.Book, sentiment float64) []Intent {
	bid, ask := m.quotes(book, 0)

	intents := make([]Intent, 0, 2)
	if m.rng.Float64() < m.orderProb {
		intents = append(intents, Limit(engine.SideBuy, bid, m.quantity))
	}
	if m.rng.Float64() < m.orderProb {
		intents = append(intents, Limit(engine.SideSell, ask, m.quantity))
	}
	return intents
}

// quotes computes skewed bid/ask prices; shift biases both quotes (used by
// the sentiment-aware variant).
func (m *MarketMaker) quotes(book *engine.Book, shift float64) (int64, int64) {
	mid := midOrFallback(book)

	bestBid := mid - 50
	if p, ok := book.BestBid(); ok {
		bestBid = float64(p)
	}
	bestAsk := mid + 50
	if p, ok := book.BestAsk(); ok {
		bestAsk = float64(p)
	}

	// keep quotes off the tightest observed spread
	spread := (bestAsk - bestBid) * 0.9
	if spread < m.minSpread {
		spread = m.minSpread
	}

	penalty := m.riskAversion * float64(m.inventory)
	bid := mid - spread/2 - penalty + shift
	ask := mid + spread/2 - penalty + shift

	bidPrice := roundPrice(bid)
	askPrice := roundPrice(ask)
	// edge case: rounding must not let the maker cross itself
	if askPrice <= bidPrice {
		askPrice = bidPrice + 1
	}
	return bidPrice, askPrice
}

func (m *MarketMaker) Update(book *engine.Book) {}

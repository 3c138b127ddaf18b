package traders

import (
	"math/rand"

	"market-sim/src/engine"
)

// NoiseTrader occasionally crosses the spread with a market order and
// otherwise litters the book with limit orders perturbed around the mid.
type NoiseTrader struct {
	id              int
	rng             *rand.Rand
	marketOrderProb float64
	priceDeviation  float64
	maxQuantity     int64
}

func NewNoiseTrader(id int, rng *rand.Rand) *NoiseTrader {
	return &NoiseTrader{
		id:              id,
		rng:             rng,
		marketOrderProb: 0.3,
		priceDeviation:  100,
		maxQuantity:     10,
	}
}

func (n *NoiseTrader) ID() int { return n.id }

func (n *NoiseTrader) Act(book *engine.Book, sentiment float64) []Intent {
	side := randomSide(n.rng)
	quantity := 1 + n.rng.Int63n(n.maxQuantity)

	if n.rng.Float64() < n.marketOrderProb {
		return []Intent{Market(side, quantity)}
	}

	mid := midOrFallback(book)
	price := mid + (n.rng.Float64()*2-1)*n.priceDeviation
	return []Intent{Limit(side, roundPrice(price), quantity)}
}

func (n *NoiseTrader) Update(book *engine.Book) {}

package traders

import (
	"math/rand"

	"market-sim/src/engine"
)

// LiquidityTaker submits one market order per tick on a random side.
type LiquidityTaker struct {
	id          int
	rng         *rand.Rand
	maxQuantity int64
}

func NewLiquidityTaker(id int, rng *rand.Rand) *LiquidityTaker {
	return &LiquidityTaker{id: id, rng: rng, maxQuantity: 20}
}

func (l *LiquidityTaker) ID() int { return l.id }

func (l *LiquidityTaker) Act(book *engine.Book, sentiment float64) []Intent {
	quantity := 1 + l.rng.Int63n(l.maxQuantity)
	return []Intent{Market(randomSide(l.rng), quantity)}
}

func (l *LiquidityTaker) Update(book *engine.Book) {}

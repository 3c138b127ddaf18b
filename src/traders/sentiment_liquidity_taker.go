package traders

import (
	"math/rand"

	"market-sim/src/engine"
)

// SentimentLiquidityTaker takes liquidity with a directional bias: buy with
// probability (1+sentiment)/2, clamped to [0, 1].
type SentimentLiquidityTaker struct {
	id          int
	rng         *rand.Rand
	maxQuantity int64
}

func NewSentimentLiquidityTaker(id int, rng *rand.Rand) *SentimentLiquidityTaker {
	return &SentimentLiquidityTaker{id: id, rng: rng, maxQuantity: 20}
}

func (s *SentimentLiquidityTaker) ID() int { return s.id }

func (s *SentimentLiquidityTaker) Act(book *engine.Book, sentiment float64) []Intent {
	buyProb := (1 + sentiment) / 2
	if buyProb < 0 {
		buyProb = 0
	}
	if buyProb > 1 {
		buyProb = 1
	}

	side := engine.SideSell
	if s.rng.Float64() < buyProb {
		side = engine.SideBuy
	}

	quantity := 1 + s.rng.Int63n(s.maxQuantity)
	return []Intent{Market(side, quantity)}
}

func (s *SentimentLiquidityTaker) Update(book *engine.Book) {}

package traders

import (
	"math/rand"

	"market-sim/src/engine"
)

// SentimentMarketMaker quotes like MarketMaker but shifts both quotes by
// sentiment times a sensitivity constant, leaning quotes upward on positive
// sentiment.
type SentimentMarketMaker struct {
	maker       *MarketMaker
	sensitivity float64
}

func NewSentimentMarketMaker(id int, rng *rand.Rand) *SentimentMarketMaker {
	maker := NewMarketMaker(id, rng)
	maker.minSpread = 2
	return &SentimentMarketMaker{maker: maker, sensitivity: 1.0}
}

func (s *SentimentMarketMaker) ID() int { return s.maker.id }

func (s *SentimentMarketMaker) Act(book *engine.Book, sentiment float64) []Intent {
	bid, ask := s.maker.quotes(book, sentiment*s.sensitivity)

	intents := make([]Intent, 0, 2)
	if s.maker.rng.Float64() < s.maker.orderProb {
		intents = append(intents, Limit(engine.SideBuy, bid, s.maker.quantity))
	}
	if s.maker.rng.Float64() < s.maker.orderProb {
		intents = append(intents, Limit(engine.SideSell, ask, s.maker.quantity))
	}
	return intents
}

func (s *SentimentMarketMaker) Update(book *engine.Book) {}

// Package traders holds the background trading strategies that populate the
// simulated market. Strategies never mutate the book directly; they observe
// it plus the tick's sentiment value and return intents for the orchestrator
// to apply.
package traders

import (
	"math"
	"math/rand"

	"market-sim/src/engine"
)

// fallbackMid seeds quoting before the book has a mid price, in cents.
const fallbackMid = 10000

// Intent is one order a strategy wants placed this tick.
type Intent struct {
	Kind     engine.OrderKind
	Side     engine.Side
	Price    int64 // cents, ignored for market intents
	Quantity int64
}

func Limit(side engine.Side, price, quantity int64) Intent {
	return Intent{Kind: engine.KindLimit, Side: side, Price: price, Quantity: quantity}
}

func Market(side engine.Side, quantity int64) Intent {
	return Intent{Kind: engine.KindMarket, Side: side, Quantity: quantity}
}

// Trader is the capability the orchestrator drives once per tick. Act must
// not mutate the book; Update runs after the tick's trades are applied.
type Trader interface {
	ID() int
	Act(book *engine.Book, sentiment float64) []Intent
	Update(book *engine.Book)
}

// roundPrice converts a float quote in cents to a valid book price.
func roundPrice(price float64) int64 {
	rounded := int64(math.Round(price))
	if rounded < 1 {
		return 1
	}
	return rounded
}

func randomSide(rng *rand.Rand) engine.Side {
	if rng.Intn(2) == 0 {
		return engine.SideBuy
	}
	return engine.SideSell
}

// midOrFallback reads the book mid price, defaulting when a side is empty.
func midOrFallback(book *engine.Book) float64 {
	if mid, ok := book.MidPrice(); ok {
		return mid
	}
	return fallbackMid
}

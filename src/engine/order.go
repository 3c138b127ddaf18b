package engine

import "errors"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderKind string

const (
	KindLimit  OrderKind = "LIMIT"
	KindMarket OrderKind = "MARKET"
)

var (
	ErrInvalidSide     = errors.New("side must be BUY or SELL")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("price must be positive for limit orders")
)

// edge case: price stored as int64 in cents to avoid floating-point precision errors
type Order struct {
	ID          int64
	Side        Side
	Kind        OrderKind
	Price       int64 // price in cents, 0 for MARKET
	Quantity    int64 // remaining quantity, reduced as the order fills
	Owner       string
	SubmittedAt int64 // simulation tick at submission
}

// Trade records one match. Price is always the resting order's price: the
// incoming side takes liquidity at the book's quote.
type Trade struct {
	TradeID     string
	Price       int64
	Quantity    int64
	BuyOrderID  int64
	SellOrderID int64
}

// BookLevel is one aggregated price level in a depth snapshot.
type BookLevel struct {
	Price    int64
	Quantity int64
}

func validateOrder(side Side, quantity int64) error {
	if side != SideBuy && side != SideSell {
		return ErrInvalidSide
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

package engine

import (
	"sync"

	"github.com/google/btree"
	"github.com/google/uuid"
)

// bidLevel sorts price levels descending so Min() is the best bid.
type bidLevel struct {
	level *priceLevel
}

func (b *bidLevel) Less(than btree.Item) bool {
	return b.level.price > than.(*bidLevel).level.price
}

// askLevel sorts price levels ascending so Min() is the best ask.
type askLevel struct {
	level *priceLevel
}

func (a *askLevel) Less(than btree.Item) bool {
	return a.level.price < than.(*askLevel).level.price
}

// priceLevel holds the ids of resting orders at one price, oldest first.
// Remaining quantity lives only on the indexed Order, so the queue and the
// index cannot diverge. A level is in its tree if and only if the queue is
// non-empty.
type priceLevel struct {
	price int64
	queue []int64
}

// Book is a single-instrument limit order book with price-time priority
// matching. One writer mutates it at a time; queries take a read lock so the
// book can be inspected while a simulation is running.
type Book struct {
	mu     sync.RWMutex
	bids   *btree.BTree
	asks   *btree.BTree
	orders map[int64]*Order // resting orders only
	nextID int64
	now    int64
}

func NewBook() *Book {
	return &Book{
		bids:   btree.New(32),
		asks:   btree.New(32),
		orders: make(map[int64]*Order),
	}
}

// SetTime stamps subsequently submitted orders with the given simulation tick.
func (b *Book) SetTime(tick int64) {
	b.mu.Lock()
	b.now = tick
	b.mu.Unlock()
}

// SubmitLimit matches the incoming order against the opposite side and rests
// any unmatched remainder at the tail of its price level. The returned trades
// may be empty; a non-crossing order simply rests.
func (b *Book) SubmitLimit(owner string, side Side, price, quantity int64) (int64, []Trade, error) {
	if err := validateOrder(side, quantity); err != nil {
		return 0, nil, err
	}
	if price <= 0 {
		return 0, nil, ErrInvalidPrice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order := b.newOrder(owner, side, KindLimit, price, quantity)
	trades := b.match(order, price, false)
	if order.Quantity > 0 {
		b.rest(order)
	}
	return order.ID, trades, nil
}

// SubmitMarket sweeps the opposite side from the best price outward. Any
// unfilled remainder is discarded, never rested; a market order against an
// empty opposite book is a valid, fully unfilled request.
func (b *Book) SubmitMarket(owner string, side Side, quantity int64) (int64, []Trade, error) {
	if err := validateOrder(side, quantity); err != nil {
		return 0, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order := b.newOrder(owner, side, KindMarket, 0, quantity)
	trades := b.match(order, 0, true)
	return order.ID, trades, nil
}

// Cancel removes a resting order from its level and the index. Unknown or
// already resolved ids are a no-op reported as false.
func (b *Book) Cancel(orderID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return false
	}

	tree := b.sideTree(order.Side)
	if item := tree.Get(b.levelKey(order.Side, order.Price)); item != nil {
		level := levelOf(item)
		for i, id := range level.queue {
			if id == orderID {
				level.queue = append(level.queue[:i], level.queue[i+1:]...)
				break
			}
		}
		// edge case: deleting the last order at a price deletes the level
		if len(level.queue) == 0 {
			tree.Delete(item)
		}
	}

	delete(b.orders, orderID)
	return true
}

func (b *Book) newOrder(owner string, side Side, kind OrderKind, price, quantity int64) *Order {
	b.nextID++
	return &Order{
		ID:          b.nextID,
		Side:        side,
		Kind:        kind,
		Price:       price,
		Quantity:    quantity,
		Owner:       owner,
		SubmittedAt: b.now,
	}
}

// match consumes liquidity from the opposite side in best-price order, oldest
// order first within a level. Each match produces exactly one trade at the
// resting order's price. Callers hold the write lock.
func (b *Book) match(taker *Order, limit int64, market bool) []Trade {
	trades := make([]Trade, 0)

	opposite := b.asks
	if taker.Side == SideSell {
		opposite = b.bids
	}

	for taker.Quantity > 0 {
		item := opposite.Min()
		if item == nil {
			break
		}
		level := levelOf(item)
		if !market && !crosses(taker.Side, limit, level.price) {
			break
		}

		for taker.Quantity > 0 && len(level.queue) > 0 {
			maker := b.orders[level.queue[0]]

			qty := taker.Quantity
			if maker.Quantity < qty {
				qty = maker.Quantity
			}

			trade := Trade{
				TradeID:  uuid.New().String(),
				Price:    level.price,
				Quantity: qty,
			}
			if taker.Side == SideBuy {
				trade.BuyOrderID = taker.ID
				trade.SellOrderID = maker.ID
			} else {
				trade.BuyOrderID = maker.ID
				trade.SellOrderID = taker.ID
			}
			trades = append(trades, trade)

			taker.Quantity -= qty
			maker.Quantity -= qty

			if maker.Quantity == 0 {
				level.queue = level.queue[1:]
				delete(b.orders, maker.ID)
			}
		}

		if len(level.queue) == 0 {
			opposite.Delete(item)
		}
	}

	return trades
}

// rest parks the remainder of a limit order, creating the level if absent.
func (b *Book) rest(order *Order) {
	b.orders[order.ID] = order

	tree := b.sideTree(order.Side)
	if existing := tree.Get(b.levelKey(order.Side, order.Price)); existing != nil {
		level := levelOf(existing)
		level.queue = append(level.queue, order.ID)
		return
	}

	level := &priceLevel{price: order.Price, queue: []int64{order.ID}}
	tree.ReplaceOrInsert(b.levelItem(order.Side, level))
}

func (b *Book) sideTree(side Side) *btree.BTree {
	if side == SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *Book) levelKey(side Side, price int64) btree.Item {
	return b.levelItem(side, &priceLevel{price: price})
}

func (b *Book) levelItem(side Side, level *priceLevel) btree.Item {
	if side == SideBuy {
		return &bidLevel{level: level}
	}
	return &askLevel{level: level}
}

func levelOf(item btree.Item) *priceLevel {
	switch it := item.(type) {
	case *bidLevel:
		return it.level
	case *askLevel:
		return it.level
	}
	return nil
}

func crosses(takerSide Side, limit, restingPrice int64) bool {
	if takerSide == SideBuy {
		return restingPrice <= limit
	}
	return restingPrice >= limit
}

// BestBid returns the highest resting bid price.
func (b *Book) BestBid() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestPrice(b.bids)
}

// BestAsk returns the lowest resting ask price.
func (b *Book) BestAsk() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestPrice(b.asks)
}

// MidPrice is the average of the best bid and ask, unavailable when either
// side is empty.
func (b *Book) MidPrice() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bid, okBid := bestPrice(b.bids)
	ask, okAsk := bestPrice(b.asks)
	if !okBid || !okAsk {
		return 0, false
	}
	return float64(bid+ask) / 2, true
}

// Spread is best ask minus best bid, unavailable when either side is empty.
func (b *Book) Spread() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bid, okBid := bestPrice(b.bids)
	ask, okAsk := bestPrice(b.asks)
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

func bestPrice(tree *btree.BTree) (int64, bool) {
	item := tree.Min()
	if item == nil {
		return 0, false
	}
	return levelOf(item).price, true
}

// VolumeAt sums the remaining quantity resting at a price on one side.
func (b *Book) VolumeAt(side Side, price int64) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	item := b.sideTree(side).Get(b.levelKey(side, price))
	if item == nil {
		return 0
	}

	var total int64
	for _, id := range levelOf(item).queue {
		total += b.orders[id].Quantity
	}
	return total
}

// Depth aggregates up to depth levels per side: bids descending, asks
// ascending.
func (b *Book) Depth(depth int) (bids, asks []BookLevel) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = b.collectLevels(b.bids, depth)
	asks = b.collectLevels(b.asks, depth)
	return bids, asks
}

func (b *Book) collectLevels(tree *btree.BTree, depth int) []BookLevel {
	levels := make([]BookLevel, 0, depth)
	tree.Ascend(func(item btree.Item) bool {
		if len(levels) >= depth {
			return false
		}
		level := levelOf(item)
		var total int64
		for _, id := range level.queue {
			total += b.orders[id].Quantity
		}
		levels = append(levels, BookLevel{Price: level.price, Quantity: total})
		return true
	})
	return levels
}

// Resting returns a copy of a resting order, false once it has been fully
// filled or cancelled.
func (b *Book) Resting(orderID int64) (Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	order, ok := b.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *order, true
}

// OpenOrders is the number of orders currently resting in the book.
func (b *Book) OpenOrders() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

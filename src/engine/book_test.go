package engine_test

import (
	"math/rand"
	"testing"

	"market-sim/src/engine"
)

// Resting sell 100x10, buys at 90 and 80 rest below it, then a buy at 110x5
// lifts 5 from the sell. The taker is fully filled and nothing new rests.
func TestLimitOrderPartialFillAgainstRestingSell(t *testing.T) {
	book := engine.NewBook()

	sellID, trades, err := book.SubmitLimit("t1", engine.SideSell, 100, 10)
	if err != nil {
		t.Fatalf("submit sell: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}

	if _, trades, _ = book.SubmitLimit("t2", engine.SideBuy, 90, 10); len(trades) != 0 {
		t.Fatalf("buy 90 should rest, got %d trades", len(trades))
	}
	if _, trades, _ = book.SubmitLimit("t3", engine.SideBuy, 80, 10); len(trades) != 0 {
		t.Fatalf("buy 80 should rest, got %d trades", len(trades))
	}

	if ask, ok := book.BestAsk(); !ok || ask != 100 {
		t.Errorf("expected best ask 100, got %d (ok=%v)", ask, ok)
	}
	if bid, ok := book.BestBid(); !ok || bid != 90 {
		t.Errorf("expected best bid 90, got %d (ok=%v)", bid, ok)
	}

	buyID, trades, err := book.SubmitLimit("t4", engine.SideBuy, 110, 5)
	if err != nil {
		t.Fatalf("submit crossing buy: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Price != 100 || trades[0].Quantity != 5 {
		t.Errorf("expected trade (100, 5), got (%d, %d)", trades[0].Price, trades[0].Quantity)
	}
	if trades[0].BuyOrderID != buyID || trades[0].SellOrderID != sellID {
		t.Errorf("trade participants wrong: buy=%d sell=%d", trades[0].BuyOrderID, trades[0].SellOrderID)
	}

	resting, ok := book.Resting(sellID)
	if !ok {
		t.Fatal("sell order should still rest")
	}
	if resting.Quantity != 5 {
		t.Errorf("expected sell remainder 5, got %d", resting.Quantity)
	}
	if _, ok := book.Resting(buyID); ok {
		t.Error("fully filled buy order must not rest")
	}
}

// Market buy of 15 against asks {100: 10, 105: 20} sweeps two levels.
func TestMarketOrderSweepsLevels(t *testing.T) {
	book := engine.NewBook()

	if _, _, err := book.SubmitLimit("t1", engine.SideSell, 100, 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := book.SubmitLimit("t2", engine.SideSell, 105, 20); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, trades, err := book.SubmitMarket("t3", engine.SideBuy, 15)
	if err != nil {
		t.Fatalf("submit market: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Price != 100 || trades[0].Quantity != 10 {
		t.Errorf("first trade should be (100, 10), got (%d, %d)", trades[0].Price, trades[0].Quantity)
	}
	if trades[1].Price != 105 || trades[1].Quantity != 5 {
		t.Errorf("second trade should be (105, 5), got (%d, %d)", trades[1].Price, trades[1].Quantity)
	}

	if vol := book.VolumeAt(engine.SideSell, 100); vol != 0 {
		t.Errorf("level 100 should be gone, has volume %d", vol)
	}
	if vol := book.VolumeAt(engine.SideSell, 105); vol != 15 {
		t.Errorf("level 105 should hold 15, has %d", vol)
	}
	if ask, ok := book.BestAsk(); !ok || ask != 105 {
		t.Errorf("best ask should be 105, got %d (ok=%v)", ask, ok)
	}
}

// A market order against an empty opposite book is valid and yields nothing.
func TestMarketOrderAgainstEmptyBook(t *testing.T) {
	book := engine.NewBook()

	_, trades, err := book.SubmitMarket("t1", engine.SideBuy, 10)
	if err != nil {
		t.Fatalf("market order against empty book must not error: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
	if book.OpenOrders() != 0 {
		t.Errorf("book should stay empty, has %d orders", book.OpenOrders())
	}

	// partially filled market orders discard the remainder
	book.SubmitLimit("t2", engine.SideBuy, 90, 3)
	_, trades, _ = book.SubmitMarket("t3", engine.SideSell, 10)
	if len(trades) != 1 || trades[0].Quantity != 3 {
		t.Fatalf("expected single trade of 3, got %v", trades)
	}
	if book.OpenOrders() != 0 {
		t.Error("market remainder must not rest")
	}
}

// Two resting orders at the same price fill oldest first.
func TestPriceTimePriorityWithinLevel(t *testing.T) {
	book := engine.NewBook()

	firstID, _, _ := book.SubmitLimit("t1", engine.SideSell, 100, 10)
	secondID, _, _ := book.SubmitLimit("t2", engine.SideSell, 100, 10)

	_, trades, _ := book.SubmitMarket("t3", engine.SideBuy, 15)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].SellOrderID != firstID {
		t.Errorf("oldest order must fill first, got id %d", trades[0].SellOrderID)
	}
	if trades[1].SellOrderID != secondID || trades[1].Quantity != 5 {
		t.Errorf("second fill should take 5 from order %d", secondID)
	}

	if _, ok := book.Resting(firstID); ok {
		t.Error("first order should be fully filled")
	}
	if resting, ok := book.Resting(secondID); !ok || resting.Quantity != 5 {
		t.Error("second order should rest with quantity 5")
	}
}

// Every trade deducts the same quantity from both participants.
func TestQuantityConservation(t *testing.T) {
	book := engine.NewBook()

	book.SubmitLimit("t1", engine.SideSell, 100, 7)
	book.SubmitLimit("t2", engine.SideSell, 101, 9)

	buyID, trades, _ := book.SubmitLimit("t3", engine.SideBuy, 101, 12)

	var filled int64
	for _, trade := range trades {
		filled += trade.Quantity
	}
	if filled != 12 {
		t.Fatalf("expected taker fully filled for 12, got %d", filled)
	}
	if _, ok := book.Resting(buyID); ok {
		t.Error("taker filled in full must not rest")
	}
	// 7+9-12 = 4 remains on the ask side
	if vol := book.VolumeAt(engine.SideSell, 101); vol != 4 {
		t.Errorf("expected remainder 4 at 101, got %d", vol)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	book := engine.NewBook()

	id, _, _ := book.SubmitLimit("t1", engine.SideBuy, 90, 10)

	if !book.Cancel(id) {
		t.Fatal("first cancel should succeed")
	}
	if book.Cancel(id) {
		t.Error("second cancel must report failure")
	}
	if book.Cancel(424242) {
		t.Error("cancel of unknown id must report failure")
	}
	if _, ok := book.BestBid(); ok {
		t.Error("cancelling the only bid must remove the level")
	}
}

func TestContractViolationsRejectedBeforeMutation(t *testing.T) {
	book := engine.NewBook()

	if _, _, err := book.SubmitLimit("t1", engine.SideBuy, 100, 0); err != engine.ErrInvalidQuantity {
		t.Errorf("zero quantity should be rejected, got %v", err)
	}
	if _, _, err := book.SubmitLimit("t1", engine.SideBuy, 100, -5); err != engine.ErrInvalidQuantity {
		t.Errorf("negative quantity should be rejected, got %v", err)
	}
	if _, _, err := book.SubmitLimit("t1", engine.SideBuy, 0, 5); err != engine.ErrInvalidPrice {
		t.Errorf("zero price should be rejected, got %v", err)
	}
	if _, _, err := book.SubmitLimit("t1", engine.Side("HOLD"), 100, 5); err != engine.ErrInvalidSide {
		t.Errorf("unknown side should be rejected, got %v", err)
	}
	if _, _, err := book.SubmitMarket("t1", engine.SideSell, 0); err != engine.ErrInvalidQuantity {
		t.Errorf("zero market quantity should be rejected, got %v", err)
	}
	if book.OpenOrders() != 0 {
		t.Error("rejected orders must not mutate the book")
	}
}

func TestDepthOrdering(t *testing.T) {
	book := engine.NewBook()

	for _, p := range []int64{95, 90, 97} {
		book.SubmitLimit("t1", engine.SideBuy, p, 10)
	}
	for _, p := range []int64{103, 100, 105} {
		book.SubmitLimit("t2", engine.SideSell, p, 10)
	}

	bids, asks := book.Depth(2)
	if len(bids) != 2 || bids[0].Price != 97 || bids[1].Price != 95 {
		t.Errorf("bids should be descending from 97, got %v", bids)
	}
	if len(asks) != 2 || asks[0].Price != 100 || asks[1].Price != 103 {
		t.Errorf("asks should be ascending from 100, got %v", asks)
	}
}

// After any random mix of submissions and cancels, a non-empty book is never
// crossed at rest and ids resolve consistently.
func TestBookNeverCrossedAtRest(t *testing.T) {
	book := engine.NewBook()
	rng := rand.New(rand.NewSource(7))

	var live []int64
	for i := 0; i < 2000; i++ {
		switch rng.Intn(4) {
		case 0:
			id, _, err := book.SubmitLimit("t", engine.SideBuy, 80+rng.Int63n(40), 1+rng.Int63n(20))
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			live = append(live, id)
		case 1:
			id, _, err := book.SubmitLimit("t", engine.SideSell, 80+rng.Int63n(40), 1+rng.Int63n(20))
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			live = append(live, id)
		case 2:
			side := engine.SideBuy
			if rng.Intn(2) == 0 {
				side = engine.SideSell
			}
			book.SubmitMarket("t", side, 1+rng.Int63n(10))
		case 3:
			if len(live) > 0 {
				book.Cancel(live[rng.Intn(len(live))])
			}
		}

		bid, okBid := book.BestBid()
		ask, okAsk := book.BestAsk()
		if okBid && okAsk && bid >= ask {
			t.Fatalf("book crossed at rest after op %d: bid=%d ask=%d", i, bid, ask)
		}
	}

	// index and level views agree on the remaining quantity
	for _, id := range live {
		order, ok := book.Resting(id)
		if !ok {
			continue
		}
		if vol := book.VolumeAt(order.Side, order.Price); vol < order.Quantity {
			t.Fatalf("level volume %d at %d below order %d quantity %d", vol, order.Price, id, order.Quantity)
		}
	}
}

func TestOrderIDsMonotonic(t *testing.T) {
	book := engine.NewBook()

	a, _, _ := book.SubmitLimit("t1", engine.SideBuy, 90, 1)
	b, _, _ := book.SubmitLimit("t1", engine.SideBuy, 91, 1)
	c, _, _ := book.SubmitMarket("t1", engine.SideSell, 1)
	if !(a < b && b < c) {
		t.Errorf("ids must be monotonically increasing, got %d %d %d", a, b, c)
	}
}

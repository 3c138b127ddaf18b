package sim

import (
	"fmt"

	"market-sim/src/engine"
)

// ActionKind is what the external agent may do each step.
type ActionKind string

const (
	ActionLimit  ActionKind = "LIMIT"
	ActionMarket ActionKind = "MARKET"
	ActionWait   ActionKind = "WAIT"
)

// Action is the agent's per-step decision. Price is ignored for market
// orders; a wait performs no book mutation but still advances one tick.
type Action struct {
	Kind     ActionKind
	Side     engine.Side
	Price    int64
	Quantity int64
}

// Env is the decision-agent boundary around a Market: it applies agent
// actions, scores fills of open agent orders as negative slippage against
// the mid price, and reports the observation vector plus termination flags.
type Env struct {
	cfg     Config
	market  *Market
	open    map[int64]struct{}
	closed  map[int64]struct{}
	pending []engine.Trade // fills seen since the previous reward pass
}

func NewEnv(cfg Config) *Env {
	e := &Env{cfg: cfg}
	e.Reset()
	return e
}

// Reset rebuilds the market from the configuration and returns the initial
// observation.
func (e *Env) Reset() []float64 {
	e.market = New(e.cfg)
	e.open = make(map[int64]struct{})
	e.closed = make(map[int64]struct{})
	e.pending = nil
	return e.market.Observation()
}

// Market exposes the wrapped market, mainly for inspection and tests.
func (e *Env) Market() *Market { return e.market }

// Step applies one agent action, settles the reward for fills since the
// previous step, then advances the background simulation one tick.
//
// terminated: the agent's product is exhausted and no agent orders remain
// open. truncated: the sentiment signal ran out.
func (e *Env) Step(action Action) (obs []float64, reward float64, terminated, truncated bool, err error) {
	switch action.Kind {
	case ActionWait:
		// no book mutation, the tick still advances
	case ActionLimit, ActionMarket:
		id, trades, submitErr := e.market.SubmitAgentOrder(
			engine.OrderKind(action.Kind), action.Side, action.Price, action.Quantity)
		if submitErr != nil {
			return nil, 0, false, false, submitErr
		}
		e.open[id] = struct{}{}
		e.pending = append(e.pending, trades...)
	default:
		return nil, 0, false, false, fmt.Errorf("unsupported action kind %q", action.Kind)
	}

	reward = e.settle()

	if result, ok := e.market.Tick(); ok {
		e.pending = append(e.pending, result.Trades...)
	}

	terminated = e.market.RemainingProduct() <= 0 && len(e.open) == 0
	truncated = e.market.Truncated()
	return e.market.Observation(), reward, terminated, truncated, nil
}

// settle scores pending fills of open agent orders against the current mid
// price and retires orders that no longer rest in the book. Reward is
// zero-initialized each step.
func (e *Env) settle() float64 {
	var reward float64
	mid, hasMid := e.market.Book().MidPrice()

	for _, fill := range e.pending {
		for _, id := range [2]int64{fill.BuyOrderID, fill.SellOrderID} {
			if _, open := e.open[id]; !open {
				continue
			}
			// edge case: no mid means no slippage reference, fill scores zero
			if hasMid && mid != 0 {
				reward += -(float64(fill.Price) - mid) / mid * float64(fill.Quantity)
			}
		}
	}
	e.pending = e.pending[:0]

	for id := range e.open {
		if _, resting := e.market.Book().Resting(id); !resting {
			delete(e.open, id)
			e.closed[id] = struct{}{}
		}
	}
	return reward
}

// OpenOrders is the number of agent orders still tracked as open.
func (e *Env) OpenOrders() int { return len(e.open) }

// ClosedOrders is the number of agent orders fully resolved so far.
func (e *Env) ClosedOrders() int { return len(e.closed) }

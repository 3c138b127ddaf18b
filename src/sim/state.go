package sim

// State is the derived, read-only market view recomputed once per tick from
// the current book, the tick's sentiment value and the agent ledger. Fields
// with a Has flag are unavailable when a book side is empty; the observation
// vector defaults them to zero.
type State struct {
	Tick             int
	MidPrice         float64
	HasMid           bool
	Spread           int64
	HasSpread        bool
	BestBid          int64
	HasBid           bool
	BestAsk          int64
	HasAsk           bool
	Sentiment        float64
	RemainingProduct int64
	Volumes          []int64 // trailing per-tick traded volume, oldest first
}

// observation flattens the state into the agent's fixed-length numeric
// vector: [mid, spread, bid, ask, sentiment, product] followed by the
// left-zero-padded trailing volume window.
func (s State) observation(lookback int) []float64 {
	obs := make([]float64, 0, 6+lookback)
	obs = append(obs,
		zeroUnless(s.MidPrice, s.HasMid),
		zeroUnless(float64(s.Spread), s.HasSpread),
		zeroUnless(float64(s.BestBid), s.HasBid),
		zeroUnless(float64(s.BestAsk), s.HasAsk),
		s.Sentiment,
		float64(s.RemainingProduct),
	)

	pad := lookback - len(s.Volumes)
	for i := 0; i < pad; i++ {
		obs = append(obs, 0)
	}
	start := 0
	if pad < 0 {
		start = -pad
	}
	for _, v := range s.Volumes[start:] {
		obs = append(obs, float64(v))
	}
	return obs
}

func zeroUnless(v float64, ok bool) float64 {
	if !ok {
		return 0
	}
	return v
}

package models

type ErrorResponse struct {
	Error string `json:"error"`
}

type PriceLevelInfo struct {
	Price    int64 `json:"price"`    // price in cents
	Quantity int64 `json:"quantity"` // aggregated remaining quantity
}

type OrderBookResponse struct {
	Instrument string           `json:"instrument"`
	Tick       int              `json:"tick"`
	Bids       []PriceLevelInfo `json:"bids"` // sorted descending (highest first)
	Asks       []PriceLevelInfo `json:"asks"` // sorted ascending (lowest first)
}

type MarketStateResponse struct {
	Tick             int       `json:"tick"`
	MidPrice         float64   `json:"mid_price"`
	Spread           int64     `json:"spread"`
	BestBid          int64     `json:"best_bid"`
	BestAsk          int64     `json:"best_ask"`
	Sentiment        float64   `json:"sentiment"`
	RemainingProduct int64     `json:"remaining_product"`
	Volumes          []int64   `json:"volumes"`
	Observation      []float64 `json:"observation"`
}

type TradeInfo struct {
	TradeID     string `json:"trade_id"`
	Price       int64  `json:"price"` // price in cents
	Quantity    int64  `json:"quantity"`
	BuyOrderID  int64  `json:"buy_order_id"`
	SellOrderID int64  `json:"sell_order_id"`
	Tick        int    `json:"tick"`
}

type TradesResponse struct {
	Count  int         `json:"count"`
	Trades []TradeInfo `json:"trades"`
}

type SeriesResponse struct {
	MidPrice []float64 `json:"mid_price"`
	Spread   []float64 `json:"spread"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	TicksCompleted int    `json:"ticks_completed"`
	OrdersInBook   int    `json:"orders_in_book"`
	TradesExecuted int64  `json:"trades_executed"`
	VolumeTraded   int64  `json:"volume_traded"`
}

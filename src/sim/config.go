package sim

import (
	"os"
	"strconv"
)

// Config sizes the trader population and fixes the run parameters. Signal is
// the exogenous sentiment sequence, one value per tick, consumed in
// chronological order.
type Config struct {
	NoiseTraders             int
	MarketMakers             int
	LiquidityTakers          int
	SentimentMarketMakers    int
	SentimentLiquidityTakers int

	Signal         []float64
	OrderLifetime  int   // agent order lifetime in ticks
	InitialProduct int64 // tradable product available to the agent
	VolumeLookback int   // trailing volume window length
	Seed           int64
}

// DefaultConfig mirrors the reference population: mostly noise, a handful of
// makers and takers, one sentiment-aware maker.
func DefaultConfig() Config {
	return Config{
		NoiseTraders:          80,
		MarketMakers:          10,
		LiquidityTakers:       10,
		SentimentMarketMakers: 1,
		OrderLifetime:         20,
		InitialProduct:        100,
		VolumeLookback:        5,
		Seed:                  42,
	}
}

// FromEnv overlays environment overrides on the default configuration.
// The signal itself is supplied by the caller.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.NoiseTraders = envInt("SIM_NOISE_TRADERS", cfg.NoiseTraders)
	cfg.MarketMakers = envInt("SIM_MARKET_MAKERS", cfg.MarketMakers)
	cfg.LiquidityTakers = envInt("SIM_LIQUIDITY_TAKERS", cfg.LiquidityTakers)
	cfg.SentimentMarketMakers = envInt("SIM_SENTIMENT_MAKERS", cfg.SentimentMarketMakers)
	cfg.SentimentLiquidityTakers = envInt("SIM_SENTIMENT_TAKERS", cfg.SentimentLiquidityTakers)
	cfg.OrderLifetime = envInt("SIM_ORDER_LIFETIME", cfg.OrderLifetime)
	cfg.InitialProduct = int64(envInt("SIM_INITIAL_PRODUCT", int(cfg.InitialProduct)))
	cfg.VolumeLookback = envInt("SIM_VOLUME_LOOKBACK", cfg.VolumeLookback)
	cfg.Seed = int64(envInt("SIM_SEED", int(cfg.Seed)))
	return cfg
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

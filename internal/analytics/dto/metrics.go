package dto

import "time"

// PositionMetrics holds the computed performance metrics for one position.
// All percentage fields are plain numbers (12.5 means 12.5%), never fractions.
type PositionMetrics struct {
	Ticker                  string    `json:"ticker"`
	TotalReturnPct          float64   `json:"total_return_pct"`
	AnnualizedVolatilityPct float64   `json:"annualized_volatility_pct"`
	SharpeRatio             float64   `json:"sharpe_ratio"`
	MaxDrawdownPct          float64   `json:"max_drawdown_pct"`
	PeriodHighPrice         float64   `json:"period_high_price"`
	PriorPeriodReturnPct    float64   `json:"prior_period_return_pct"`
	CurrentPeriodReturnPct  float64   `json:"current_period_return_pct"`
	// HasSufficientHistory is false when fewer than 2 daily returns were
	// available; volatility and Sharpe are sentinels (0) in that case and
	// must not be read as "zero risk".
	HasSufficientHistory bool `json:"has_sufficient_history"`
	// Estimated marks the fallback path: no price series was available and
	// the numbers derive from entry vs current price only.
	Estimated bool      `json:"estimated"`
	PriceAsOf time.Time `json:"price_as_of"`
}

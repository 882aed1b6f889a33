package service

import (
	"fmt"
	"math"

	"golang-portfolio-analytics/internal/analytics/config"
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/entity"
	"golang-portfolio-analytics/pkg/common"
)

// RiskCalculator holds the pure metric, scoring, aggregation and alerting
// logic. It carries no mutable state; one instance is safe for concurrent use.
type RiskCalculator struct {
	thresholds      config.Thresholds
	riskFreeRatePct float64
}

// NewRiskCalculator creates a calculator with the given threshold set and
// risk-free rate (percent, e.g. 2.0).
func NewRiskCalculator(thresholds config.Thresholds, riskFreeRatePct float64) *RiskCalculator {
	return &RiskCalculator{
		thresholds:      thresholds,
		riskFreeRatePct: riskFreeRatePct,
	}
}

// ComputeMetrics computes the performance metrics for one position from the
// trailing lookbackDays closes of the series. An empty or nil series degrades
// to an entry-vs-current estimate with Estimated set; that is the only
// recovery path for missing price data. All percentages are plain numbers.
func (c *RiskCalculator) ComputeMetrics(position entity.Position, series *dto.PriceSeries, lookbackDays int) (dto.PositionMetrics, error) {
	if lookbackDays <= 0 {
		return dto.PositionMetrics{}, fmt.Errorf("lookback days must be positive, got %d", lookbackDays)
	}

	if series.Len() == 0 {
		return c.estimateMetrics(position), nil
	}

	window := series.Candles
	if len(window) > lookbackDays {
		window = window[len(window)-lookbackDays:]
	}

	metrics := dto.PositionMetrics{
		Ticker:    position.Ticker,
		PriceAsOf: window[len(window)-1].Date,
	}

	first := window[0].Close
	last := window[len(window)-1].Close
	if first > 0 {
		metrics.TotalReturnPct = (last - first) / first * 100
	}

	returns := dailyReturns(window)
	if len(returns) >= 2 {
		metrics.HasSufficientHistory = true
		metrics.AnnualizedVolatilityPct = sampleStdDev(returns) * math.Sqrt(common.TradingDaysPerYear)
		metrics.SharpeRatio = c.sharpeRatio(mean(returns), metrics.AnnualizedVolatilityPct)
	}

	metrics.MaxDrawdownPct, metrics.PeriodHighPrice = maxDrawdown(window)
	metrics.PriorPeriodReturnPct, metrics.CurrentPeriodReturnPct = periodReturns(window)

	return metrics, nil
}

// estimateMetrics is the fallback path for a missing price series: a rough
// entry-vs-current estimate, flagged so consumers can lower their confidence.
func (c *RiskCalculator) estimateMetrics(position entity.Position) dto.PositionMetrics {
	metrics := dto.PositionMetrics{
		Ticker:    position.Ticker,
		Estimated: true,
		PriceAsOf: position.PriceUpdatedAt,
	}

	if position.EntryPrice > 0 {
		metrics.TotalReturnPct = (position.CurrentPrice - position.EntryPrice) / position.EntryPrice * 100
	}

	factor := c.thresholds.EstimatedVolatilityFactor
	metrics.AnnualizedVolatilityPct = math.Abs(metrics.TotalReturnPct) * factor
	metrics.SharpeRatio = c.sharpeRatio(metrics.TotalReturnPct, metrics.AnnualizedVolatilityPct)

	if position.CurrentPrice < position.EntryPrice && position.EntryPrice > 0 {
		metrics.MaxDrawdownPct = (position.EntryPrice - position.CurrentPrice) / position.EntryPrice * 100
	}
	metrics.PeriodHighPrice = math.Max(position.EntryPrice, position.CurrentPrice)

	return metrics
}

// sharpeRatio computes excess return over volatility, resolving zero
// volatility to the 0 sentinel instead of NaN or Inf.
func (c *RiskCalculator) sharpeRatio(meanReturnPct, volatilityPct float64) float64 {
	if volatilityPct == 0 {
		return 0
	}
	return (meanReturnPct - c.riskFreeRatePct) / volatilityPct
}

// dailyReturns computes simple percentage changes between consecutive closes.
// Candles with a non-positive close are skipped as a base.
func dailyReturns(window []dto.Candle) []float64 {
	if len(window) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		prev := window[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, (window[i].Close-prev)/prev*100)
	}
	return returns
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// maxDrawdown scans the window chronologically, tracking the running peak and
// the largest percentage decline from it. The result is always >= 0 and is 0
// exactly when the series never falls below a prior peak. The running peak is
// also returned as the period high.
func maxDrawdown(window []dto.Candle) (drawdownPct, periodHigh float64) {
	for _, candle := range window {
		if candle.Close > periodHigh {
			periodHigh = candle.Close
		}
		if periodHigh > 0 {
			dd := (periodHigh - candle.Close) / periodHigh * 100
			if dd > drawdownPct {
				drawdownPct = dd
			}
		}
	}
	return drawdownPct, periodHigh
}

// periodReturns splits the window into two equal halves and returns the
// percentage change across each half's boundary prices. Windows too short to
// split (fewer than 4 closes) yield zeros, never extrapolations.
func periodReturns(window []dto.Candle) (priorPct, currentPct float64) {
	if len(window) < 4 {
		return 0, 0
	}

	mid := len(window) / 2
	prior := window[:mid]
	current := window[mid:]

	if first := prior[0].Close; first > 0 {
		priorPct = (prior[len(prior)-1].Close - first) / first * 100
	}
	if first := current[0].Close; first > 0 {
		currentPct = (current[len(current)-1].Close - first) / first * 100
	}

	return priorPct, currentPct
}

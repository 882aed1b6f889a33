package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-portfolio-analytics/internal/analytics/config"
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/entity"
)

func newTestCalculator() *RiskCalculator {
	return NewRiskCalculator(config.DefaultThresholds(), 2.0)
}

func seriesFromCloses(ticker string, closes ...float64) *dto.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := &dto.PriceSeries{Ticker: ticker}
	for i, c := range closes {
		series.Candles = append(series.Candles, dto.Candle{
			Date:  start.AddDate(0, 0, i),
			Close: c,
		})
	}
	return series
}

func testPosition(ticker string, entry, current float64) entity.Position {
	return entity.Position{
		Ticker:       ticker,
		Shares:       10,
		EntryPrice:   entry,
		CurrentPrice: current,
	}
}

func TestComputeMetrics_TotalReturnUsesTrailingWindow(t *testing.T) {
	calc := newTestCalculator()

	// 5 closes, lookback 3: window is the last 3 entries (100 -> 110).
	series := seriesFromCloses("AAA", 50, 60, 100, 105, 110)
	metrics, err := calc.ComputeMetrics(testPosition("AAA", 90, 110), series, 3)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, metrics.TotalReturnPct, 1e-9)
	assert.False(t, metrics.Estimated)
}

func TestComputeMetrics_ConstantSeriesHasZeroVolatilityAndSentinelSharpe(t *testing.T) {
	calc := newTestCalculator()

	series := seriesFromCloses("AAA", 100, 100, 100, 100, 100)
	metrics, err := calc.ComputeMetrics(testPosition("AAA", 100, 100), series, 90)
	require.NoError(t, err)

	assert.True(t, metrics.HasSufficientHistory)
	assert.Zero(t, metrics.AnnualizedVolatilityPct)
	// Zero volatility must resolve to the sentinel, never NaN/Inf.
	assert.Zero(t, metrics.SharpeRatio)
	assert.Zero(t, metrics.TotalReturnPct)
}

func TestComputeMetrics_MaxDrawdown(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name     string
		closes   []float64
		expected float64
	}{
		{
			name:     "non-decreasing series has zero drawdown",
			closes:   []float64{100, 100, 105, 110, 120},
			expected: 0,
		},
		{
			name:     "drop from running peak",
			closes:   []float64{100, 120, 90, 110},
			expected: 25, // (120-90)/120
		},
		{
			name:     "deepest of several drops wins",
			closes:   []float64{100, 80, 95, 60, 70},
			expected: 40, // (100-60)/100
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := seriesFromCloses("AAA", tt.closes...)
			metrics, err := calc.ComputeMetrics(testPosition("AAA", 100, tt.closes[len(tt.closes)-1]), series, 90)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, metrics.MaxDrawdownPct, 1e-9)
			assert.GreaterOrEqual(t, metrics.MaxDrawdownPct, 0.0)
		})
	}
}

func TestComputeMetrics_PeriodHighPrice(t *testing.T) {
	calc := newTestCalculator()

	series := seriesFromCloses("AAA", 100, 140, 120, 130)
	metrics, err := calc.ComputeMetrics(testPosition("AAA", 100, 130), series, 90)
	require.NoError(t, err)

	assert.InDelta(t, 140.0, metrics.PeriodHighPrice, 1e-9)
}

func TestComputeMetrics_PeriodReturns(t *testing.T) {
	calc := newTestCalculator()

	// Halves: [100, 110] and [120, 150].
	series := seriesFromCloses("AAA", 100, 110, 120, 150)
	metrics, err := calc.ComputeMetrics(testPosition("AAA", 100, 150), series, 90)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, metrics.PriorPeriodReturnPct, 1e-9)
	assert.InDelta(t, 25.0, metrics.CurrentPeriodReturnPct, 1e-9)
}

func TestComputeMetrics_PeriodReturnsZeroedForShortSeries(t *testing.T) {
	calc := newTestCalculator()

	series := seriesFromCloses("AAA", 100, 110, 120)
	metrics, err := calc.ComputeMetrics(testPosition("AAA", 100, 120), series, 90)
	require.NoError(t, err)

	// Too short to split: never extrapolated.
	assert.Zero(t, metrics.PriorPeriodReturnPct)
	assert.Zero(t, metrics.CurrentPeriodReturnPct)
}

func TestComputeMetrics_InsufficientHistoryFlagged(t *testing.T) {
	calc := newTestCalculator()

	series := seriesFromCloses("AAA", 100, 105)
	metrics, err := calc.ComputeMetrics(testPosition("AAA", 100, 105), series, 90)
	require.NoError(t, err)

	// One daily return is not enough for a sample standard deviation.
	assert.False(t, metrics.HasSufficientHistory)
	assert.Zero(t, metrics.AnnualizedVolatilityPct)
	assert.Zero(t, metrics.SharpeRatio)
}

func TestComputeMetrics_EmptySeriesFallsBackToEstimate(t *testing.T) {
	calc := newTestCalculator()

	for _, series := range []*dto.PriceSeries{nil, {Ticker: "AAA"}} {
		metrics, err := calc.ComputeMetrics(testPosition("AAA", 50, 45), series, 90)
		require.NoError(t, err)

		assert.True(t, metrics.Estimated)
		assert.False(t, metrics.HasSufficientHistory)
		assert.InDelta(t, -10.0, metrics.TotalReturnPct, 1e-9)
		// Volatility proxy is a fraction of |total return|.
		assert.InDelta(t, 5.0, metrics.AnnualizedVolatilityPct, 1e-9)
		assert.InDelta(t, 10.0, metrics.MaxDrawdownPct, 1e-9)
	}
}

func TestComputeMetrics_NonPositiveLookbackIsHardFailure(t *testing.T) {
	calc := newTestCalculator()

	_, err := calc.ComputeMetrics(testPosition("AAA", 100, 100), seriesFromCloses("AAA", 100, 101), 0)
	assert.Error(t, err)

	_, err = calc.ComputeMetrics(testPosition("AAA", 100, 100), seriesFromCloses("AAA", 100, 101), -5)
	assert.Error(t, err)
}

func TestComputeMetrics_VolatilityAnnualization(t *testing.T) {
	calc := newTestCalculator()

	// Alternating +10% / ~-9.09% daily returns give a known sample stddev.
	series := seriesFromCloses("AAA", 100, 110, 100, 110, 100)
	metrics, err := calc.ComputeMetrics(testPosition("AAA", 100, 100), series, 90)
	require.NoError(t, err)

	assert.True(t, metrics.HasSufficientHistory)
	assert.Greater(t, metrics.AnnualizedVolatilityPct, 100.0)
	assert.False(t, metrics.Estimated)
}

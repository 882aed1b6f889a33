package service

import (
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/entity"
	"golang-portfolio-analytics/pkg/common"
)

// ScoreRisk converts a position's P&L magnitude and portfolio weight into a
// discrete risk score and level. Deterministic and side-effect free; a zero
// portfolio total value resolves the weight to 0, not a division error.
func (c *RiskCalculator) ScoreRisk(position entity.Position, metrics dto.PositionMetrics, portfolioTotalValue float64) dto.PositionRisk {
	weightPct := 0.0
	if portfolioTotalValue > 0 {
		weightPct = position.MarketValue() / portfolioTotalValue * 100
	}

	score := c.returnScore(metrics.TotalReturnPct) + c.weightScore(weightPct)

	sector := position.Sector
	if sector == "" {
		sector = common.SectorUnknown
	}

	return dto.PositionRisk{
		Ticker:             position.Ticker,
		Sector:             sector,
		MarketValue:        position.MarketValue(),
		PortfolioWeightPct: weightPct,
		RiskScore:          score,
		RiskLevel:          c.scoreToLevel(score),
		Metrics:            metrics,
	}
}

// returnScore awards points for P&L magnitude; tiers are exclusive, only the
// highest matching tier counts.
func (c *RiskCalculator) returnScore(totalReturnPct float64) int {
	abs := totalReturnPct
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > c.thresholds.ExtremeReturnPct:
		return 3
	case abs > c.thresholds.HighReturnPct:
		return 2
	case abs > c.thresholds.ElevatedReturnPct:
		return 1
	default:
		return 0
	}
}

func (c *RiskCalculator) weightScore(weightPct float64) int {
	switch {
	case weightPct > c.thresholds.HighWeightPct:
		return 2
	case weightPct > c.thresholds.MediumWeightPct:
		return 1
	default:
		return 0
	}
}

func (c *RiskCalculator) scoreToLevel(score int) dto.RiskLevel {
	switch {
	case score >= c.thresholds.HighRiskScore:
		return dto.RiskLevelHigh
	case score >= c.thresholds.MediumRiskScore:
		return dto.RiskLevelMedium
	default:
		return dto.RiskLevelLow
	}
}

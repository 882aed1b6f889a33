package service

import (
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/entity"
)

// Aggregate combines per-position risks into the portfolio-level summary,
// excluding alerts (added by the alert generator afterwards). A portfolio
// with zero scored positions yields zero defaults, never a division error.
func (c *RiskCalculator) Aggregate(portfolio entity.Portfolio, risks []dto.PositionRisk, skipped []dto.SkippedPosition) dto.PortfolioRiskSummary {
	summary := dto.PortfolioRiskSummary{
		PortfolioID:       portfolio.ID,
		Name:              portfolio.Name,
		Positions:         risks,
		SkippedPositions:  skipped,
		RiskLevel:         dto.RiskLevelLow,
		ConcentrationRisk: dto.RiskLevelLow,
		Alerts:            []dto.Alert{},
	}

	if len(risks) == 0 {
		return summary
	}

	totalValue := 0.0
	for _, r := range risks {
		totalValue += r.MarketValue
	}
	summary.TotalValue = totalValue

	maxWeight := 0.0
	scoreSum := 0
	sectors := map[string]struct{}{}

	for _, r := range risks {
		weight := 0.0
		if totalValue > 0 {
			weight = r.MarketValue / totalValue
		}
		summary.WeightedReturnPct += r.Metrics.TotalReturnPct * weight
		summary.WeightedVolatilityPct += r.Metrics.AnnualizedVolatilityPct * weight

		if r.PortfolioWeightPct > maxWeight {
			maxWeight = r.PortfolioWeightPct
		}
		scoreSum += r.RiskScore
		sectors[r.Sector] = struct{}{}
	}

	// Portfolio Sharpe is recomputed from the weighted numbers; averaging
	// individual Sharpe ratios is not mathematically valid.
	summary.SharpeRatio = c.sharpeRatio(summary.WeightedReturnPct, summary.WeightedVolatilityPct)

	summary.AvgRiskScore = float64(scoreSum) / float64(len(risks))
	summary.ConcentrationRisk = c.concentrationLevel(maxWeight)
	summary.DiversificationScore = diversificationScore(len(sectors), len(risks))
	summary.RiskLevel = c.portfolioLevel(summary.AvgRiskScore, summary.ConcentrationRisk)

	for _, r := range risks {
		if r.Metrics.Estimated {
			summary.Degraded = true
			break
		}
	}

	return summary
}

func (c *RiskCalculator) concentrationLevel(maxWeightPct float64) dto.RiskLevel {
	switch {
	case maxWeightPct > c.thresholds.HighWeightPct:
		return dto.RiskLevelHigh
	case maxWeightPct > c.thresholds.MediumWeightPct:
		return dto.RiskLevelMedium
	default:
		return dto.RiskLevelLow
	}
}

// portfolioLevel derives the portfolio's overall level from the average
// position score (same tiering as position levels) bumped by concentration.
func (c *RiskCalculator) portfolioLevel(avgScore float64, concentration dto.RiskLevel) dto.RiskLevel {
	level := dto.RiskLevelLow
	if avgScore >= float64(c.thresholds.HighRiskScore) {
		level = dto.RiskLevelHigh
	} else if avgScore >= float64(c.thresholds.MediumRiskScore) {
		level = dto.RiskLevelMedium
	}

	if concentration == dto.RiskLevelHigh {
		return dto.RiskLevelHigh
	}
	if concentration == dto.RiskLevelMedium && level == dto.RiskLevelLow {
		return dto.RiskLevelMedium
	}
	return level
}

// diversificationScore is distinctSectors/positionCount scaled to 0-100 and
// capped at 100. Known limitation: it ignores relative position sizes, so a
// single-position portfolio scores 100. Downstream consumers depend on the
// exact current scale, so the formula stays as is.
func diversificationScore(distinctSectors, positionCount int) float64 {
	if positionCount == 0 {
		return 0
	}
	score := float64(distinctSectors) / float64(positionCount) * 100
	if score > 100 {
		score = 100
	}
	return score
}

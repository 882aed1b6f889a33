package service

import (
	"fmt"

	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/entity"
	"golang-portfolio-analytics/pkg/utils"
)

// GenerateAlerts evaluates every per-position rule independently; a position
// can carry several alerts at once. Missing stop-loss or take-profit levels
// never produce the corresponding alert. The result is unsorted; callers may
// order by severity for display.
func (c *RiskCalculator) GenerateAlerts(position entity.Position, risk dto.PositionRisk) []dto.Alert {
	alerts := []dto.Alert{}
	weightPct := risk.PortfolioWeightPct
	now := utils.TimeNowUTC()

	if position.StopLoss != nil {
		stopLoss := *position.StopLoss
		band := stopLoss * (1 + c.thresholds.StopLossProximityPct/100)
		switch {
		case position.CurrentPrice <= stopLoss:
			alerts = append(alerts, dto.Alert{
				Type:     dto.AlertTypeStopLoss,
				Severity: dto.SeverityCritical,
				Message: fmt.Sprintf("%s hit its stop-loss: price %.2f is at or below %.2f",
					position.Ticker, position.CurrentPrice, stopLoss),
				Ticker:       position.Ticker,
				PortfolioID:  position.PortfolioID,
				CurrentPrice: position.CurrentPrice,
				EntryPrice:   position.EntryPrice,
				StopLoss:     position.StopLoss,
				Action:       dto.ActionSell,
				Timestamp:    now,
			})
		case position.CurrentPrice <= band:
			alerts = append(alerts, dto.Alert{
				Type:     dto.AlertTypeStopLoss,
				Severity: dto.SeverityHigh,
				Message: fmt.Sprintf("%s is within %.1f%% of its stop-loss %.2f (price %.2f)",
					position.Ticker, c.thresholds.StopLossProximityPct, stopLoss, position.CurrentPrice),
				Ticker:       position.Ticker,
				PortfolioID:  position.PortfolioID,
				CurrentPrice: position.CurrentPrice,
				EntryPrice:   position.EntryPrice,
				StopLoss:     position.StopLoss,
				Action:       dto.ActionMonitor,
				Timestamp:    now,
			})
		}
	}

	if position.TakeProfit != nil {
		takeProfit := *position.TakeProfit
		band := takeProfit * (1 - c.thresholds.TakeProfitProximityPct/100)
		switch {
		case position.CurrentPrice >= takeProfit:
			alerts = append(alerts, dto.Alert{
				Type:     dto.AlertTypeTakeProfit,
				Severity: dto.SeverityMedium,
				Message: fmt.Sprintf("%s reached its take-profit %.2f (price %.2f), consider locking in gains",
					position.Ticker, takeProfit, position.CurrentPrice),
				Ticker:       position.Ticker,
				PortfolioID:  position.PortfolioID,
				CurrentPrice: position.CurrentPrice,
				EntryPrice:   position.EntryPrice,
				TakeProfit:   position.TakeProfit,
				Action:       dto.ActionSell,
				Timestamp:    now,
			})
		case position.CurrentPrice >= band:
			alerts = append(alerts, dto.Alert{
				Type:     dto.AlertTypeTakeProfit,
				Severity: dto.SeverityLow,
				Message: fmt.Sprintf("%s is within %.1f%% of its take-profit %.2f (price %.2f)",
					position.Ticker, c.thresholds.TakeProfitProximityPct, takeProfit, position.CurrentPrice),
				Ticker:       position.Ticker,
				PortfolioID:  position.PortfolioID,
				CurrentPrice: position.CurrentPrice,
				EntryPrice:   position.EntryPrice,
				TakeProfit:   position.TakeProfit,
				Action:       dto.ActionMonitor,
				Timestamp:    now,
			})
		}
	}

	if weightPct > c.thresholds.HighWeightPct {
		alerts = append(alerts, dto.Alert{
			Type:     dto.AlertTypePositionSize,
			Severity: dto.SeverityHigh,
			Message: fmt.Sprintf("%s is %.1f%% of the portfolio, above the %.0f%% concentration limit",
				position.Ticker, weightPct, c.thresholds.HighWeightPct),
			Ticker:       position.Ticker,
			PortfolioID:  position.PortfolioID,
			CurrentPrice: position.CurrentPrice,
			EntryPrice:   position.EntryPrice,
			Action:       dto.ActionReduce,
			Timestamp:    now,
		})
	} else if weightPct > c.thresholds.MediumWeightPct {
		alerts = append(alerts, dto.Alert{
			Type:     dto.AlertTypePositionSize,
			Severity: dto.SeverityMedium,
			Message: fmt.Sprintf("%s is %.1f%% of the portfolio, above the %.0f%% watch level",
				position.Ticker, weightPct, c.thresholds.MediumWeightPct),
			Ticker:       position.Ticker,
			PortfolioID:  position.PortfolioID,
			CurrentPrice: position.CurrentPrice,
			EntryPrice:   position.EntryPrice,
			Action:       dto.ActionReduce,
			Timestamp:    now,
		})
	}

	return alerts
}

// GeneratePortfolioAlerts evaluates portfolio-level rules against an
// aggregated summary.
func (c *RiskCalculator) GeneratePortfolioAlerts(summary dto.PortfolioRiskSummary) []dto.Alert {
	alerts := []dto.Alert{}
	now := utils.TimeNowUTC()

	highScore := summary.AvgRiskScore >= float64(c.thresholds.HighRiskScore)
	highConcentration := summary.ConcentrationRisk == dto.RiskLevelHigh

	if highScore || highConcentration {
		severity := dto.SeverityHigh
		action := dto.ActionMonitor
		message := fmt.Sprintf("portfolio %q average risk score %.1f is in the high band", summary.Name, summary.AvgRiskScore)
		if highConcentration {
			action = dto.ActionReduce
			message = fmt.Sprintf("portfolio %q is over-concentrated in a single position", summary.Name)
		}
		if highScore && highConcentration {
			severity = dto.SeverityCritical
			message = fmt.Sprintf("portfolio %q combines high average risk %.1f with over-concentration", summary.Name, summary.AvgRiskScore)
		}
		alerts = append(alerts, dto.Alert{
			Type:        dto.AlertTypePortfolioRisk,
			Severity:    severity,
			Message:     message,
			PortfolioID: summary.PortfolioID,
			Action:      action,
			Timestamp:   now,
		})
	}

	if c.thresholds.MarketVolatilityPct > 0 && summary.WeightedVolatilityPct > c.thresholds.MarketVolatilityPct {
		alerts = append(alerts, dto.Alert{
			Type:     dto.AlertTypeMarketCondition,
			Severity: dto.SeverityHigh,
			Message: fmt.Sprintf("portfolio %q weighted volatility %.1f%% exceeds the %.0f%% market stress level",
				summary.Name, summary.WeightedVolatilityPct, c.thresholds.MarketVolatilityPct),
			PortfolioID: summary.PortfolioID,
			Action:      dto.ActionMonitor,
			Timestamp:   now,
		})
	}

	return alerts
}

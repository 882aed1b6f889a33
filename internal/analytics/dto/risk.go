package dto

import "time"

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// PositionRisk combines a position's metrics with its risk assessment.
type PositionRisk struct {
	Ticker             string          `json:"ticker"`
	Sector             string          `json:"sector"`
	MarketValue        float64         `json:"market_value"`
	PortfolioWeightPct float64         `json:"portfolio_weight_pct"`
	RiskScore          int             `json:"risk_score"`
	RiskLevel          RiskLevel       `json:"risk_level"`
	Metrics            PositionMetrics `json:"metrics"`
	Alerts             []Alert         `json:"alerts"`
}

// SkippedPosition records a position excluded from aggregation and why. A
// skipped position contributes nothing to portfolio totals.
type SkippedPosition struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// PortfolioRiskSummary is the per-portfolio output of the engine.
type PortfolioRiskSummary struct {
	PortfolioID             uint              `json:"portfolio_id"`
	Name                    string            `json:"name"`
	TotalValue              float64           `json:"total_value"`
	WeightedReturnPct       float64           `json:"weighted_return_pct"`
	WeightedVolatilityPct   float64           `json:"weighted_volatility_pct"`
	SharpeRatio             float64           `json:"sharpe_ratio"`
	AvgRiskScore            float64           `json:"avg_risk_score"`
	ConcentrationRisk       RiskLevel         `json:"concentration_risk"`
	DiversificationScore    float64           `json:"diversification_score"`
	RiskLevel               RiskLevel         `json:"risk_level"`
	Positions               []PositionRisk    `json:"positions"`
	SkippedPositions        []SkippedPosition `json:"skipped_positions,omitempty"`
	Alerts                  []Alert           `json:"alerts"`
	// Degraded marks a summary computed from partial data, e.g. after a
	// provider timeout cut the evaluation short.
	Degraded bool `json:"degraded"`
}

// OverallRiskSummary is the cross-portfolio rollup for one user.
type OverallRiskSummary struct {
	UserID         uint                   `json:"user_id"`
	TotalValue     float64                `json:"total_value"`
	RiskScore      float64                `json:"risk_score"` // 0-100 scale
	RiskLevel      RiskLevel              `json:"risk_level"`
	CriticalAlerts int                    `json:"critical_alerts"`
	HighAlerts     int                    `json:"high_alerts"`
	Portfolios     []PortfolioRiskSummary `json:"portfolios"`
	Degraded       bool                   `json:"degraded"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

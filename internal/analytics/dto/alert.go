package dto

import "time"

type AlertType string

const (
	AlertTypeStopLoss        AlertType = "STOP_LOSS"
	AlertTypeTakeProfit      AlertType = "TAKE_PROFIT"
	AlertTypePositionSize    AlertType = "POSITION_SIZE"
	AlertTypePortfolioRisk   AlertType = "PORTFOLIO_RISK"
	AlertTypeMarketCondition AlertType = "MARKET_CONDITION"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "LOW"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

type AlertAction string

const (
	ActionSell    AlertAction = "SELL"
	ActionHold    AlertAction = "HOLD"
	ActionReduce  AlertAction = "REDUCE"
	ActionMonitor AlertAction = "MONITOR"
)

// severityRank orders severities for display purposes; the generator itself
// never sorts.
var severityRank = map[AlertSeverity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
}

// Rank returns a comparable weight for the severity, higher is more urgent.
func (s AlertSeverity) Rank() int {
	return severityRank[s]
}

// Alert is a transient, typed recommendation. Alerts are regenerated on every
// evaluation; the engine keeps no alert history or acknowledgement state.
type Alert struct {
	Type         AlertType     `json:"type"`
	Severity     AlertSeverity `json:"severity"`
	Message      string        `json:"message"`
	Ticker       string        `json:"ticker,omitempty"`
	PortfolioID  uint          `json:"portfolio_id,omitempty"`
	CurrentPrice float64       `json:"current_price,omitempty"`
	EntryPrice   float64       `json:"entry_price,omitempty"`
	StopLoss     *float64      `json:"stop_loss,omitempty"`
	TakeProfit   *float64      `json:"take_profit,omitempty"`
	Action       AlertAction   `json:"action"`
	Timestamp    time.Time     `json:"timestamp"`
}

package telegram

import (
	"fmt"
	"sort"
	"strings"

	"golang-portfolio-analytics/internal/analytics/dto"
)

// FormatRiskAlertsForTelegram renders the CRITICAL and HIGH alerts of a risk
// summary as a Markdown message. Returns an empty string when there is
// nothing urgent to report.
func FormatRiskAlertsForTelegram(summary *dto.OverallRiskSummary) string {
	if summary == nil || (summary.CriticalAlerts == 0 && summary.HighAlerts == 0) {
		return ""
	}

	var b strings.Builder
	b.WriteString("🚨 *Portfolio Risk Alerts* 🚨\n\n")
	b.WriteString(fmt.Sprintf("Overall risk: *%s* (score %.0f/100)\n", summary.RiskLevel, summary.RiskScore))
	b.WriteString(fmt.Sprintf("Total value: %.2f\n\n", summary.TotalValue))

	for _, portfolio := range summary.Portfolios {
		urgent := collectUrgentAlerts(portfolio)
		if len(urgent) == 0 {
			continue
		}

		b.WriteString(fmt.Sprintf("📁 *%s*\n", portfolio.Name))
		for _, alert := range urgent {
			b.WriteString(fmt.Sprintf("%s `%s` %s → *%s*\n", severityIcon(alert.Severity), alert.Type, alert.Message, alert.Action))
		}
		b.WriteString("\n")
	}

	if summary.Degraded {
		b.WriteString("_Some portfolios were evaluated from partial data._\n")
	}

	return b.String()
}

func collectUrgentAlerts(portfolio dto.PortfolioRiskSummary) []dto.Alert {
	var urgent []dto.Alert
	for _, alert := range portfolio.Alerts {
		if alert.Severity == dto.SeverityCritical || alert.Severity == dto.SeverityHigh {
			urgent = append(urgent, alert)
		}
	}
	for _, position := range portfolio.Positions {
		for _, alert := range position.Alerts {
			if alert.Severity == dto.SeverityCritical || alert.Severity == dto.SeverityHigh {
				urgent = append(urgent, alert)
			}
		}
	}
	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].Severity.Rank() > urgent[j].Severity.Rank()
	})
	return urgent
}

func severityIcon(severity dto.AlertSeverity) string {
	switch severity {
	case dto.SeverityCritical:
		return "🔴"
	case dto.SeverityHigh:
		return "🟠"
	case dto.SeverityMedium:
		return "🟡"
	default:
		return "⚪"
	}
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"golang-portfolio-analytics/internal/analytics/config"
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/analytics/repository"
	"golang-portfolio-analytics/internal/entity"
	"golang-portfolio-analytics/pkg/logger"
	"golang-portfolio-analytics/pkg/telegram"
	"golang-portfolio-analytics/pkg/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// RiskSummaryService runs the full analytics pipeline across a user's
// portfolios and exposes the per-portfolio detail view.
type RiskSummaryService interface {
	Summarize(ctx context.Context, userID uint) (*dto.OverallRiskSummary, error)
	Detail(ctx context.Context, portfolioID uint) (*dto.PortfolioRiskSummary, error)
	Refresh(ctx context.Context, userID uint, triggeredBy string) (*dto.OverallRiskSummary, error)
}

type riskSummaryService struct {
	cfg              *config.Config
	log              *logger.Logger
	calculator       *RiskCalculator
	portfolioRepo    repository.PortfolioRepository
	priceHistoryRepo repository.PriceHistoryRepository
	historyRepo      repository.EvaluationHistoryRepository
	telegramNotifier telegram.Notifier
}

// NewRiskSummaryService creates the orchestrator. The telegram notifier and
// history repository may be nil; notification and run recording are then
// skipped.
func NewRiskSummaryService(
	cfg *config.Config,
	log *logger.Logger,
	calculator *RiskCalculator,
	portfolioRepo repository.PortfolioRepository,
	priceHistoryRepo repository.PriceHistoryRepository,
	historyRepo repository.EvaluationHistoryRepository,
	telegramNotifier telegram.Notifier,
) RiskSummaryService {
	return &riskSummaryService{
		cfg:              cfg,
		log:              log,
		calculator:       calculator,
		portfolioRepo:    portfolioRepo,
		priceHistoryRepo: priceHistoryRepo,
		historyRepo:      historyRepo,
		telegramNotifier: telegramNotifier,
	}
}

// Summarize evaluates every portfolio the user owns, concurrently, and rolls
// the results into one value-weighted summary. Provider failures degrade the
// affected portfolio only; the summary itself fails just on store errors.
func (s *riskSummaryService) Summarize(ctx context.Context, userID uint) (*dto.OverallRiskSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Analytics.SummaryTimeout)
	defer cancel()

	portfolios, err := s.portfolioRepo.GetPortfolios(ctx, dto.GetPortfoliosParam{UserID: utils.ToPointer(userID)})
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolios for user %d: %w", userID, err)
	}

	summaries := make([]dto.PortfolioRiskSummary, len(portfolios))

	var g errgroup.Group
	g.SetLimit(s.cfg.Analytics.MaxConcurrent)
	for i, portfolio := range portfolios {
		i, portfolio := i, portfolio
		g.Go(func() error {
			summaries[i] = s.evaluatePortfolio(ctx, portfolio)
			return nil
		})
	}
	// The aggregation below must not start before every portfolio finished.
	_ = g.Wait()

	summary := s.rollup(userID, summaries)
	s.log.InfoContext(ctx, "Risk summary computed",
		logger.Field("user_id", userID),
		logger.IntField("portfolios", len(portfolios)),
		logger.Float64Field("risk_score", summary.RiskScore))
	return summary, nil
}

// Detail runs the pipeline for one portfolio on demand.
func (s *riskSummaryService) Detail(ctx context.Context, portfolioID uint) (*dto.PortfolioRiskSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Analytics.SummaryTimeout)
	defer cancel()

	portfolio, err := s.portfolioRepo.FindByID(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio %d: %w", portfolioID, err)
	}

	summary := s.evaluatePortfolio(ctx, *portfolio)
	return &summary, nil
}

// Refresh re-runs the full pipeline for a user, records the run, and notifies
// the user about CRITICAL/HIGH alerts. Re-running with unchanged inputs
// produces an identical summary.
func (s *riskSummaryService) Refresh(ctx context.Context, userID uint, triggeredBy string) (*dto.OverallRiskSummary, error) {
	var history *entity.EvaluationHistory
	if s.historyRepo != nil && s.cfg.Analytics.RecordEvaluation {
		history = &entity.EvaluationHistory{
			UserID:      userID,
			TriggeredBy: triggeredBy,
			Status:      entity.EvaluationStatusRunning,
			StartedAt:   utils.TimeNowUTC(),
		}
		if err := s.historyRepo.Create(ctx, history); err != nil {
			s.log.Error("Failed to create evaluation history", logger.ErrorField(err), logger.Field("user_id", userID))
			history = nil
		}
	}

	summary, err := s.Summarize(ctx, userID)
	if history != nil {
		s.completeHistory(ctx, history, summary, err)
	}
	if err != nil {
		return nil, err
	}

	s.notifyUrgentAlerts(summary)
	return summary, nil
}

func (s *riskSummaryService) completeHistory(ctx context.Context, history *entity.EvaluationHistory, summary *dto.OverallRiskSummary, runErr error) {
	history.CompletedAt = sql.NullTime{Time: utils.TimeNowUTC(), Valid: true}
	if runErr != nil {
		history.Status = entity.EvaluationStatusFailed
		history.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	} else {
		history.Status = entity.EvaluationStatusCompleted
		if raw, err := json.Marshal(summary); err == nil {
			history.Result = datatypes.JSON(raw)
		} else {
			s.log.Error("Failed to marshal summary for history", logger.ErrorField(err), logger.Field("user_id", history.UserID))
		}
	}
	if err := s.historyRepo.Update(ctx, history); err != nil {
		s.log.Error("Failed to update evaluation history", logger.ErrorField(err), logger.Field("history_id", history.ID))
	}
}

func (s *riskSummaryService) notifyUrgentAlerts(summary *dto.OverallRiskSummary) {
	if s.telegramNotifier == nil || !s.cfg.Telegram.Enabled {
		return
	}
	message := telegram.FormatRiskAlertsForTelegram(summary)
	if message == "" {
		return
	}

	userID := summary.UserID
	utils.GoSafe(func() {
		if err := s.telegramNotifier.SendMessage(message); err != nil {
			s.log.Error("Failed to send risk alert notification", logger.ErrorField(err), logger.Field("user_id", userID))
		}
	})
}

// evaluatePortfolio runs metrics, scoring, aggregation and alerting for one
// portfolio. It never returns an error: data problems degrade the summary.
func (s *riskSummaryService) evaluatePortfolio(ctx context.Context, portfolio entity.Portfolio) dto.PortfolioRiskSummary {
	positions, err := s.portfolioRepo.GetPositions(ctx, dto.GetPositionsParam{PortfolioIDs: []uint{portfolio.ID}})
	if err != nil {
		s.log.Error("Failed to load positions", logger.ErrorField(err), logger.Field("portfolio_id", portfolio.ID))
		summary := s.calculator.Aggregate(portfolio, nil, nil)
		summary.Degraded = true
		return summary
	}

	valid := make([]entity.Position, 0, len(positions))
	var skipped []dto.SkippedPosition
	for _, position := range positions {
		if reason := validatePosition(position); reason != "" {
			skipped = append(skipped, dto.SkippedPosition{Ticker: position.Ticker, Reason: reason})
			continue
		}
		valid = append(valid, position)
	}

	seriesByIdx := make([]*dto.PriceSeries, len(valid))
	timedOut := make([]bool, len(valid))

	var g errgroup.Group
	g.SetLimit(s.cfg.Analytics.MaxConcurrent)
	for i, position := range valid {
		i, position := i, position
		g.Go(func() error {
			series, err := s.priceHistoryRepo.Get(ctx, dto.GetPriceSeriesParam{
				Ticker:       position.Ticker,
				LookbackDays: s.cfg.Analytics.LookbackDays,
			})
			if err != nil {
				// Missing history is recoverable: the calculator falls back
				// to the entry-vs-current estimate.
				s.log.Debug("Price series unavailable, using fallback estimate",
					logger.ErrorField(err), logger.StringField("ticker", position.Ticker))
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
					timedOut[i] = true
				}
				return nil
			}
			seriesByIdx[i] = series
			return nil
		})
	}
	_ = g.Wait()

	degraded := false
	for _, t := range timedOut {
		if t {
			degraded = true
			break
		}
	}

	// Resolve staleness: when the fetched series carries a fresher close than
	// the stored snapshot price, the series wins.
	for i := range valid {
		refreshCurrentPrice(&valid[i], seriesByIdx[i])
		if stale := s.cfg.Analytics.MaxPriceStale; stale > 0 && utils.TimeNowUTC().Sub(valid[i].PriceUpdatedAt) > stale {
			s.log.Warn("Position price is stale",
				logger.StringField("ticker", valid[i].Ticker),
				logger.Field("price_updated_at", valid[i].PriceUpdatedAt))
		}
	}

	totalValue := 0.0
	for _, position := range valid {
		totalValue += position.MarketValue()
	}

	risks := make([]dto.PositionRisk, 0, len(valid))
	for i, position := range valid {
		metrics, err := s.calculator.ComputeMetrics(position, seriesByIdx[i], s.cfg.Analytics.LookbackDays)
		if err != nil {
			s.log.Error("Failed to compute metrics", logger.ErrorField(err), logger.StringField("ticker", position.Ticker))
			skipped = append(skipped, dto.SkippedPosition{Ticker: position.Ticker, Reason: err.Error()})
			continue
		}
		risk := s.calculator.ScoreRisk(position, metrics, totalValue)
		risk.Alerts = s.calculator.GenerateAlerts(position, risk)
		risks = append(risks, risk)
	}

	summary := s.calculator.Aggregate(portfolio, risks, skipped)
	summary.Alerts = s.calculator.GeneratePortfolioAlerts(summary)
	if degraded {
		summary.Degraded = true
	}
	return summary
}

// rollup produces the value-weighted overall summary across portfolios. The
// 0-5 average score is scaled to 0-100 (x20) before tiering.
func (s *riskSummaryService) rollup(userID uint, portfolios []dto.PortfolioRiskSummary) *dto.OverallRiskSummary {
	summary := &dto.OverallRiskSummary{
		UserID:      userID,
		RiskLevel:   dto.RiskLevelLow,
		Portfolios:  portfolios,
		GeneratedAt: utils.TimeNowUTC(),
	}

	weightedScore := 0.0
	for _, portfolio := range portfolios {
		summary.TotalValue += portfolio.TotalValue
		weightedScore += portfolio.AvgRiskScore * portfolio.TotalValue
		if portfolio.Degraded {
			summary.Degraded = true
		}

		for _, alert := range portfolio.Alerts {
			countAlert(summary, alert)
		}
		for _, position := range portfolio.Positions {
			for _, alert := range position.Alerts {
				countAlert(summary, alert)
			}
		}
	}

	if summary.TotalValue > 0 {
		summary.RiskScore = weightedScore / summary.TotalValue * 20 // 0-5 -> 0-100
	}
	summary.RiskLevel = s.overallLevel(summary.RiskScore)

	return summary
}

func countAlert(summary *dto.OverallRiskSummary, alert dto.Alert) {
	switch alert.Severity {
	case dto.SeverityCritical:
		summary.CriticalAlerts++
	case dto.SeverityHigh:
		summary.HighAlerts++
	}
}

func (s *riskSummaryService) overallLevel(score float64) dto.RiskLevel {
	thresholds := s.calculator.thresholds
	switch {
	case score >= thresholds.OverallCriticalScore:
		return dto.RiskLevelCritical
	case score >= thresholds.OverallHighScore:
		return dto.RiskLevelHigh
	case score >= thresholds.OverallMediumScore:
		return dto.RiskLevelMedium
	default:
		return dto.RiskLevelLow
	}
}

// validatePosition rejects malformed snapshots at the input boundary. The
// returned reason is empty for valid positions.
func validatePosition(position entity.Position) string {
	switch {
	case position.Ticker == "":
		return "ticker is empty"
	case position.Shares <= 0:
		return fmt.Sprintf("shares must be positive, got %v", position.Shares)
	case position.EntryPrice <= 0:
		return fmt.Sprintf("entry price must be positive, got %v", position.EntryPrice)
	case position.CurrentPrice <= 0:
		return fmt.Sprintf("current price must be positive, got %v", position.CurrentPrice)
	default:
		return ""
	}
}

// refreshCurrentPrice overwrites the stored snapshot price with the series'
// latest close when the series is fresher.
func refreshCurrentPrice(position *entity.Position, series *dto.PriceSeries) {
	last, asOf, ok := series.LastClose()
	if !ok || last <= 0 {
		return
	}
	if asOf.After(position.PriceUpdatedAt) {
		position.CurrentPrice = last
		position.PriceUpdatedAt = asOf
	}
}

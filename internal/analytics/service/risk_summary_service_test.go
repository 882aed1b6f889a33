package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-portfolio-analytics/internal/analytics/config"
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/entity"
	"golang-portfolio-analytics/pkg/logger"
)

type fakePortfolioRepo struct {
	portfolios []entity.Portfolio
	positions  map[uint][]entity.Position
	err        error
}

func (f *fakePortfolioRepo) GetPortfolios(ctx context.Context, param dto.GetPortfoliosParam) ([]entity.Portfolio, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.Portfolio
	for _, p := range f.portfolios {
		if param.UserID != nil && p.UserID != *param.UserID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePortfolioRepo) GetPositions(ctx context.Context, param dto.GetPositionsParam) ([]entity.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.Position
	for _, id := range param.PortfolioIDs {
		out = append(out, f.positions[id]...)
	}
	return out, nil
}

func (f *fakePortfolioRepo) GetDistinctTickers(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var tickers []string
	for _, positions := range f.positions {
		for _, p := range positions {
			if _, ok := seen[p.Ticker]; ok {
				continue
			}
			seen[p.Ticker] = struct{}{}
			tickers = append(tickers, p.Ticker)
		}
	}
	return tickers, nil
}

func (f *fakePortfolioRepo) FindByID(ctx context.Context, id uint) (*entity.Portfolio, error) {
	for _, p := range f.portfolios {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("portfolio %d not found", id)
}

type fakePriceHistoryRepo struct {
	series map[string]*dto.PriceSeries
	errs   map[string]error
}

func (f *fakePriceHistoryRepo) Get(ctx context.Context, param dto.GetPriceSeriesParam) (*dto.PriceSeries, error) {
	if err, ok := f.errs[param.Ticker]; ok {
		return nil, err
	}
	if series, ok := f.series[param.Ticker]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("no price data for %s", param.Ticker)
}

type fakeHistoryRepo struct {
	created *entity.EvaluationHistory
	updated *entity.EvaluationHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *entity.EvaluationHistory) error {
	copied := *history
	f.created = &copied
	history.ID = 1
	return nil
}

func (f *fakeHistoryRepo) Update(ctx context.Context, history *entity.EvaluationHistory) error {
	copied := *history
	f.updated = &copied
	return nil
}

func (f *fakeHistoryRepo) FindByUserID(ctx context.Context, userID uint, limit int) ([]entity.EvaluationHistory, error) {
	return nil, nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Analytics: config.Analytics{
			LookbackDays:    90,
			RiskFreeRatePct: 2.0,
			SummaryTimeout:  30 * time.Second,
			MaxConcurrent:   4,
		},
		Thresholds: config.DefaultThresholds(),
	}
}

func storedPosition(portfolioID uint, ticker, sector string, shares, entry, current float64) entity.Position {
	return entity.Position{
		PortfolioID:    portfolioID,
		Ticker:         ticker,
		Sector:         sector,
		Shares:         shares,
		EntryPrice:     entry,
		CurrentPrice:   current,
		PriceUpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestService(portfolioRepo *fakePortfolioRepo, priceRepo *fakePriceHistoryRepo, historyRepo *fakeHistoryRepo) RiskSummaryService {
	cfg := newTestConfig()
	if historyRepo != nil {
		cfg.Analytics.RecordEvaluation = true
	}
	calc := NewRiskCalculator(cfg.Thresholds, cfg.Analytics.RiskFreeRatePct)
	if historyRepo == nil {
		return NewRiskSummaryService(cfg, logger.NewNop(), calc, portfolioRepo, priceRepo, nil, nil)
	}
	return NewRiskSummaryService(cfg, logger.NewNop(), calc, portfolioRepo, priceRepo, historyRepo, nil)
}

func twoPositionFixture() (*fakePortfolioRepo, *fakePriceHistoryRepo) {
	portfolioRepo := &fakePortfolioRepo{
		portfolios: []entity.Portfolio{{ID: 1, UserID: 1, Name: "Growth"}},
		positions: map[uint][]entity.Position{
			1: {
				storedPosition(1, "AAA", "Tech", 10, 100, 100),
				storedPosition(1, "BBB", "Healthcare", 10, 100, 100),
			},
		},
	}
	priceRepo := &fakePriceHistoryRepo{
		series: map[string]*dto.PriceSeries{
			"AAA": seriesFromCloses("AAA", 100, 100, 100, 100, 100),
			"BBB": seriesFromCloses("BBB", 100, 100, 100, 100, 100),
		},
	}
	return portfolioRepo, priceRepo
}

func TestSummarize_WeightsAndAlertCounts(t *testing.T) {
	portfolioRepo, priceRepo := twoPositionFixture()
	svc := newTestService(portfolioRepo, priceRepo, nil)

	summary, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary.Portfolios, 1)

	portfolio := summary.Portfolios[0]
	assert.InDelta(t, 2000.0, summary.TotalValue, 1e-9)
	assert.InDelta(t, 2000.0, portfolio.TotalValue, 1e-9)

	// Each position is 50% of the portfolio: weight adds 2 points, flat
	// returns add none.
	require.Len(t, portfolio.Positions, 2)
	for _, p := range portfolio.Positions {
		assert.Equal(t, 2, p.RiskScore)
		assert.InDelta(t, 50.0, p.PortfolioWeightPct, 1e-9)
	}
	assert.InDelta(t, 2.0, portfolio.AvgRiskScore, 1e-9)
	assert.Equal(t, dto.RiskLevelHigh, portfolio.ConcentrationRisk)
	assert.Equal(t, dto.RiskLevelHigh, portfolio.RiskLevel)

	// Avg score 2 on the 0-5 scale is 40 on the 0-100 scale: Medium overall.
	assert.InDelta(t, 40.0, summary.RiskScore, 1e-9)
	assert.Equal(t, dto.RiskLevelMedium, summary.RiskLevel)

	// One portfolio concentration alert plus one size alert per position.
	assert.Equal(t, 3, summary.HighAlerts)
	assert.Zero(t, summary.CriticalAlerts)
	assert.False(t, summary.Degraded)
}

func TestSummarize_IsIdempotentForUnchangedInputs(t *testing.T) {
	portfolioRepo, priceRepo := twoPositionFixture()
	svc := newTestService(portfolioRepo, priceRepo, nil)

	first, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)

	// Timestamps differ between runs, every number must not.
	assert.Equal(t, first.TotalValue, second.TotalValue)
	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.Equal(t, first.CriticalAlerts, second.CriticalAlerts)
	assert.Equal(t, first.HighAlerts, second.HighAlerts)
	require.Len(t, second.Portfolios, len(first.Portfolios))
	for i := range first.Portfolios {
		assert.Equal(t, first.Portfolios[i].TotalValue, second.Portfolios[i].TotalValue)
		assert.Equal(t, first.Portfolios[i].WeightedReturnPct, second.Portfolios[i].WeightedReturnPct)
		assert.Equal(t, first.Portfolios[i].AvgRiskScore, second.Portfolios[i].AvgRiskScore)
		assert.Equal(t, first.Portfolios[i].RiskLevel, second.Portfolios[i].RiskLevel)
	}
}

func TestSummarize_ProviderErrorFallsBackToEstimate(t *testing.T) {
	portfolioRepo := &fakePortfolioRepo{
		portfolios: []entity.Portfolio{{ID: 1, UserID: 1, Name: "Growth"}},
		positions: map[uint][]entity.Position{
			1: {storedPosition(1, "AAA", "Tech", 10, 50, 45)},
		},
	}
	priceRepo := &fakePriceHistoryRepo{
		errs: map[string]error{"AAA": fmt.Errorf("provider unavailable")},
	}
	svc := newTestService(portfolioRepo, priceRepo, nil)

	summary, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary.Portfolios, 1)
	require.Len(t, summary.Portfolios[0].Positions, 1)

	position := summary.Portfolios[0].Positions[0]
	assert.True(t, position.Metrics.Estimated)
	assert.InDelta(t, -10.0, position.Metrics.TotalReturnPct, 1e-9)
	// Estimated metrics mark the portfolio as computed from partial data.
	assert.True(t, summary.Portfolios[0].Degraded)
	assert.True(t, summary.Degraded)
}

func TestSummarize_ProviderTimeoutMarksDegraded(t *testing.T) {
	portfolioRepo := &fakePortfolioRepo{
		portfolios: []entity.Portfolio{{ID: 1, UserID: 1, Name: "Growth"}},
		positions: map[uint][]entity.Position{
			1: {storedPosition(1, "AAA", "Tech", 10, 100, 100)},
		},
	}
	priceRepo := &fakePriceHistoryRepo{
		errs: map[string]error{"AAA": context.DeadlineExceeded},
	}
	svc := newTestService(portfolioRepo, priceRepo, nil)

	summary, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary.Portfolios, 1)
	assert.True(t, summary.Portfolios[0].Degraded)
	assert.True(t, summary.Degraded)
}

func TestSummarize_InvalidPositionsSkippedWithReason(t *testing.T) {
	portfolioRepo := &fakePortfolioRepo{
		portfolios: []entity.Portfolio{{ID: 1, UserID: 1, Name: "Growth"}},
		positions: map[uint][]entity.Position{
			1: {
				storedPosition(1, "AAA", "Tech", 10, 100, 100),
				storedPosition(1, "BAD", "Tech", -1, 100, 100),
			},
		},
	}
	priceRepo := &fakePriceHistoryRepo{
		series: map[string]*dto.PriceSeries{
			"AAA": seriesFromCloses("AAA", 100, 100, 100, 100, 100),
		},
	}
	svc := newTestService(portfolioRepo, priceRepo, nil)

	summary, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary.Portfolios, 1)

	portfolio := summary.Portfolios[0]
	require.Len(t, portfolio.SkippedPositions, 1)
	assert.Equal(t, "BAD", portfolio.SkippedPositions[0].Ticker)
	assert.Contains(t, portfolio.SkippedPositions[0].Reason, "shares must be positive")

	// Skipped positions contribute nothing to totals or weights.
	assert.InDelta(t, 1000.0, portfolio.TotalValue, 1e-9)
	require.Len(t, portfolio.Positions, 1)
	assert.InDelta(t, 100.0, portfolio.Positions[0].PortfolioWeightPct, 1e-9)
}

func TestSummarize_NoPortfoliosYieldsEmptySummary(t *testing.T) {
	portfolioRepo := &fakePortfolioRepo{}
	priceRepo := &fakePriceHistoryRepo{}
	svc := newTestService(portfolioRepo, priceRepo, nil)

	summary, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalValue)
	assert.Zero(t, summary.RiskScore)
	assert.Equal(t, dto.RiskLevelLow, summary.RiskLevel)
	assert.Empty(t, summary.Portfolios)
}

func TestSummarize_RepositoryErrorFailsTheRun(t *testing.T) {
	portfolioRepo := &fakePortfolioRepo{err: fmt.Errorf("connection refused")}
	svc := newTestService(portfolioRepo, &fakePriceHistoryRepo{}, nil)

	_, err := svc.Summarize(context.Background(), 1)
	assert.Error(t, err)
}

func TestSummarize_RefreshesStalePricesFromSeries(t *testing.T) {
	position := storedPosition(1, "AAA", "Tech", 10, 100, 80)
	position.PriceUpdatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	portfolioRepo := &fakePortfolioRepo{
		portfolios: []entity.Portfolio{{ID: 1, UserID: 1, Name: "Growth"}},
		positions:  map[uint][]entity.Position{1: {position}},
	}
	// Series closes at 120 on a date after the stored snapshot.
	priceRepo := &fakePriceHistoryRepo{
		series: map[string]*dto.PriceSeries{
			"AAA": seriesFromCloses("AAA", 100, 110, 120),
		},
	}
	svc := newTestService(portfolioRepo, priceRepo, nil)

	summary, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary.Portfolios, 1)

	// Market value uses the refreshed close, not the stale snapshot.
	assert.InDelta(t, 1200.0, summary.Portfolios[0].TotalValue, 1e-9)
}

func TestDetail_EvaluatesSinglePortfolio(t *testing.T) {
	portfolioRepo, priceRepo := twoPositionFixture()
	svc := newTestService(portfolioRepo, priceRepo, nil)

	detail, err := svc.Detail(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), detail.PortfolioID)
	assert.Equal(t, "Growth", detail.Name)
	assert.InDelta(t, 2000.0, detail.TotalValue, 1e-9)
	assert.Len(t, detail.Positions, 2)

	_, err = svc.Detail(context.Background(), 99)
	assert.Error(t, err)
}

func TestRefresh_RecordsEvaluationHistory(t *testing.T) {
	portfolioRepo, priceRepo := twoPositionFixture()
	historyRepo := &fakeHistoryRepo{}
	svc := newTestService(portfolioRepo, priceRepo, historyRepo)

	summary, err := svc.Refresh(context.Background(), 1, "api")
	require.NoError(t, err)
	require.NotNil(t, summary)

	require.NotNil(t, historyRepo.created)
	assert.Equal(t, entity.EvaluationStatusRunning, historyRepo.created.Status)
	assert.Equal(t, "api", historyRepo.created.TriggeredBy)
	assert.Equal(t, uint(1), historyRepo.created.UserID)

	require.NotNil(t, historyRepo.updated)
	assert.Equal(t, entity.EvaluationStatusCompleted, historyRepo.updated.Status)
	assert.True(t, historyRepo.updated.CompletedAt.Valid)
	assert.NotEmpty(t, historyRepo.updated.Result)
}

func TestRefresh_RecordsFailureWhenRunFails(t *testing.T) {
	portfolioRepo := &fakePortfolioRepo{err: fmt.Errorf("connection refused")}
	historyRepo := &fakeHistoryRepo{}
	svc := newTestService(portfolioRepo, &fakePriceHistoryRepo{}, historyRepo)

	_, err := svc.Refresh(context.Background(), 1, "scheduler")
	require.Error(t, err)

	require.NotNil(t, historyRepo.updated)
	assert.Equal(t, entity.EvaluationStatusFailed, historyRepo.updated.Status)
	assert.True(t, historyRepo.updated.ErrorMessage.Valid)
	assert.Contains(t, historyRepo.updated.ErrorMessage.String, "connection refused")
}

func TestValidatePosition_Reasons(t *testing.T) {
	valid := storedPosition(1, "AAA", "Tech", 10, 100, 100)
	assert.Empty(t, validatePosition(valid))

	noTicker := valid
	noTicker.Ticker = ""
	assert.Equal(t, "ticker is empty", validatePosition(noTicker))

	badShares := valid
	badShares.Shares = 0
	assert.Contains(t, validatePosition(badShares), "shares must be positive")

	badEntry := valid
	badEntry.EntryPrice = -5
	assert.Contains(t, validatePosition(badEntry), "entry price must be positive")

	badCurrent := valid
	badCurrent.CurrentPrice = 0
	assert.Contains(t, validatePosition(badCurrent), "current price must be positive")
}

func TestRefreshCurrentPrice(t *testing.T) {
	position := storedPosition(1, "AAA", "Tech", 10, 100, 80)

	// Series older than the snapshot: keep the stored price.
	stale := seriesFromCloses("AAA", 90, 95)
	refreshCurrentPrice(&position, stale)
	assert.InDelta(t, 80.0, position.CurrentPrice, 1e-9)

	// Fresher series wins.
	position.PriceUpdatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	refreshCurrentPrice(&position, stale)
	assert.InDelta(t, 95.0, position.CurrentPrice, 1e-9)

	// Nil or empty series leaves the position untouched.
	refreshCurrentPrice(&position, nil)
	assert.InDelta(t, 95.0, position.CurrentPrice, 1e-9)
}

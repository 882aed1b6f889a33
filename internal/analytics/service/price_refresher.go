package service

import (
	"context"
	"fmt"
	"time"

	"golang-portfolio-analytics/internal/analytics/config"
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/analytics/repository"
	"golang-portfolio-analytics/pkg/logger"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// PriceRefresher periodically warms the price caches for every tracked
// ticker so interactive summary requests mostly hit cache. It never evaluates
// risk itself; evaluation stays request-driven.
type PriceRefresher struct {
	cfg              *config.Config
	log              *logger.Logger
	portfolioRepo    repository.PortfolioRepository
	priceHistoryRepo repository.PriceHistoryRepository
	cron             *cron.Cron
}

// NewPriceRefresher creates a price cache refresher.
func NewPriceRefresher(cfg *config.Config, log *logger.Logger, portfolioRepo repository.PortfolioRepository, priceHistoryRepo repository.PriceHistoryRepository) *PriceRefresher {
	return &PriceRefresher{
		cfg:              cfg,
		log:              log,
		portfolioRepo:    portfolioRepo,
		priceHistoryRepo: priceHistoryRepo,
		cron:             cron.New(),
	}
}

// Start registers the cron schedule and begins running. Returns an error for
// an invalid cron spec.
func (r *PriceRefresher) Start(ctx context.Context) error {
	spec := r.cfg.PriceRefresher.CronSpec
	if spec == "" {
		spec = "*/15 * * * *"
	}

	if _, err := r.cron.AddFunc(spec, func() {
		refreshCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		r.RefreshAll(refreshCtx)
	}); err != nil {
		return fmt.Errorf("invalid price refresher cron spec %q: %w", spec, err)
	}

	r.cron.Start()
	r.log.Info("Price refresher started", logger.StringField("cron_spec", spec))
	return nil
}

// Stop halts the cron scheduler and waits for a running refresh to finish.
func (r *PriceRefresher) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshAll fetches price history for every distinct ticker held in any
// position, which as a side effect repopulates the Redis series and
// last-price caches.
func (r *PriceRefresher) RefreshAll(ctx context.Context) {
	tickers, err := r.portfolioRepo.GetDistinctTickers(ctx)
	if err != nil {
		r.log.Error("Failed to list tracked tickers", logger.ErrorField(err))
		return
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Analytics.MaxConcurrent)
	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			_, err := r.priceHistoryRepo.Get(ctx, dto.GetPriceSeriesParam{
				Ticker:       ticker,
				LookbackDays: r.cfg.Analytics.LookbackDays,
			})
			if err != nil {
				r.log.Debug("Failed to refresh price series", logger.ErrorField(err), logger.StringField("ticker", ticker))
			}
			return nil
		})
	}
	_ = g.Wait()

	r.log.Debug("Price refresh cycle completed", logger.IntField("tickers", len(tickers)))
}

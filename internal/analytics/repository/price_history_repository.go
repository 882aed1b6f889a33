package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang-portfolio-analytics/internal/analytics/config"
	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/pkg/common"
	"golang-portfolio-analytics/pkg/logger"
	redisPkg "golang-portfolio-analytics/pkg/redis"
	"golang-portfolio-analytics/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// PriceHistoryRepository supplies daily closing prices for a ticker over a
// lookback window. Implementations may be slow, return an empty series, or
// error; callers must degrade gracefully rather than abort.
type PriceHistoryRepository interface {
	Get(ctx context.Context, param dto.GetPriceSeriesParam) (*dto.PriceSeries, error)
}

type yahooFinanceRepository struct {
	cfg           config.PriceProvider
	log           *logger.Logger
	httpClient    *http.Client
	rateLimiter   *rate.Limiter
	inmemoryCache *cache.Cache
	redisClient   *redisPkg.Client
}

// NewYahooFinanceRepository creates a price history repository backed by the
// Yahoo Finance chart API, with an in-process cache in front of Redis and a
// client-side rate limit on outbound requests.
func NewYahooFinanceRepository(cfg config.PriceProvider, log *logger.Logger, redisClient *redisPkg.Client) (PriceHistoryRepository, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("price provider base_url is required")
	}

	perMinute := cfg.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &yahooFinanceRepository{
		cfg:           cfg,
		log:           log,
		httpClient:    &http.Client{Timeout: timeout},
		rateLimiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		inmemoryCache: cache.New(5*time.Minute, 10*time.Minute),
		redisClient:   redisClient,
	}, nil
}

func (r *yahooFinanceRepository) Get(ctx context.Context, param dto.GetPriceSeriesParam) (*dto.PriceSeries, error) {
	if param.Ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if param.LookbackDays <= 0 {
		return nil, fmt.Errorf("lookback days must be positive, got %d", param.LookbackDays)
	}

	cacheKey := fmt.Sprintf(common.RedisKeyPriceSeries, param.Ticker, param.LookbackDays)

	if cached, found := r.inmemoryCache.Get(cacheKey); found {
		if series, ok := cached.(*dto.PriceSeries); ok {
			return series, nil
		}
	}

	if series := r.getFromRedis(ctx, cacheKey); series != nil {
		r.inmemoryCache.Set(cacheKey, series, cache.DefaultExpiration)
		return series, nil
	}

	series, err := r.fetch(ctx, param)
	if err != nil {
		return nil, err
	}

	r.inmemoryCache.Set(cacheKey, series, cache.DefaultExpiration)
	r.setCaches(ctx, cacheKey, series)

	return series, nil
}

func (r *yahooFinanceRepository) fetch(ctx context.Context, param dto.GetPriceSeriesParam) (*dto.PriceSeries, error) {
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d", r.cfg.BaseURL, param.Ticker, param.LookbackDays)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; portfolio-analytics/1.0)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price data for %s: %w", param.Ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price provider returned status %d for %s", resp.StatusCode, param.Ticker)
	}

	var chartResp dto.YahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartResp); err != nil {
		return nil, fmt.Errorf("failed to decode price response for %s: %w", param.Ticker, err)
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("price provider error for %s: %s", param.Ticker, chartResp.Chart.Error.Description)
	}

	series := &dto.PriceSeries{Ticker: param.Ticker}
	if len(chartResp.Chart.Result) == 0 {
		return series, nil
	}

	result := chartResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series, nil
	}

	closes := result.Indicators.Quote[0].Close
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			// Providers leave holes for halted days; skip them rather than
			// fabricating a close.
			continue
		}
		series.Candles = append(series.Candles, dto.Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	return series, nil
}

func (r *yahooFinanceRepository) getFromRedis(ctx context.Context, key string) *dto.PriceSeries {
	if r.redisClient == nil {
		return nil
	}

	raw, err := r.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var series dto.PriceSeries
	if err := json.Unmarshal([]byte(raw), &series); err != nil {
		r.log.Error("Failed to unmarshal cached price series", logger.ErrorField(err), logger.StringField("key", key))
		return nil
	}

	return &series
}

func (r *yahooFinanceRepository) setCaches(ctx context.Context, key string, series *dto.PriceSeries) {
	if r.redisClient == nil {
		return
	}

	ttl := r.cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	raw, err := json.Marshal(series)
	if err != nil {
		r.log.Error("Failed to marshal price series for cache", logger.ErrorField(err), logger.StringField("ticker", series.Ticker))
		return
	}

	pipe := r.redisClient.Pipeline()
	pipe.Set(ctx, key, raw, ttl)
	if last, asOf, ok := series.LastClose(); ok {
		lastKey := fmt.Sprintf(common.RedisKeyLastPrice, series.Ticker)
		pipe.HSet(ctx, lastKey, map[string]interface{}{
			"price":     last,
			"timestamp": asOf.Unix(),
			"cached_at": utils.TimeNowUTC().Unix(),
		})
		pipe.Expire(ctx, lastKey, ttl+2*time.Minute)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to execute Redis pipeline", logger.ErrorField(err), logger.StringField("ticker", series.Ticker))
	}
}

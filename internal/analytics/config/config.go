package config

import (
	"time"

	"golang-portfolio-analytics/pkg/config"
)

// Analytics holds engine-level settings for the risk analytics service.
type Analytics struct {
	LookbackDays     int           `mapstructure:"lookback_days"`
	RiskFreeRatePct  float64       `mapstructure:"risk_free_rate_pct"`
	SummaryTimeout   time.Duration `mapstructure:"summary_timeout"`
	MaxPriceStale    time.Duration `mapstructure:"max_price_staleness"`
	MaxConcurrent    int           `mapstructure:"max_concurrent_fetches"`
	RecordEvaluation bool          `mapstructure:"record_evaluation"`
}

// Thresholds is the named, versioned set of cutoffs used by the risk scorer,
// aggregator and alert generator. Every threshold the engine consults lives
// here so changes are auditable independently of the algorithm code.
type Thresholds struct {
	Version string `mapstructure:"version"`

	// Position risk scoring (absolute total return, percent).
	ExtremeReturnPct  float64 `mapstructure:"extreme_return_pct"`
	HighReturnPct     float64 `mapstructure:"high_return_pct"`
	ElevatedReturnPct float64 `mapstructure:"elevated_return_pct"`

	// Portfolio weight (percent of total value).
	HighWeightPct   float64 `mapstructure:"high_weight_pct"`
	MediumWeightPct float64 `mapstructure:"medium_weight_pct"`

	// Score-to-level mapping on the 0-5 position scale.
	HighRiskScore   int `mapstructure:"high_risk_score"`
	MediumRiskScore int `mapstructure:"medium_risk_score"`

	// Alert proximity bands (percent distance from the trigger price).
	StopLossProximityPct   float64 `mapstructure:"stop_loss_proximity_pct"`
	TakeProfitProximityPct float64 `mapstructure:"take_profit_proximity_pct"`

	// Portfolio-level rules.
	MarketVolatilityPct float64 `mapstructure:"market_volatility_pct"`

	// Overall (cross-portfolio) tiers on the 0-100 scale.
	OverallMediumScore   float64 `mapstructure:"overall_medium_score"`
	OverallHighScore     float64 `mapstructure:"overall_high_score"`
	OverallCriticalScore float64 `mapstructure:"overall_critical_score"`

	// Fallback volatility proxy, as a fraction of |total return|.
	EstimatedVolatilityFactor float64 `mapstructure:"estimated_volatility_factor"`
}

// DefaultThresholds returns the v1 threshold set. The values mirror the
// cutoffs previously scattered across the dashboard pages.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Version:                   "v1",
		ExtremeReturnPct:          100,
		HighReturnPct:             50,
		ElevatedReturnPct:         20,
		HighWeightPct:             30,
		MediumWeightPct:           20,
		HighRiskScore:             4,
		MediumRiskScore:           2,
		StopLossProximityPct:      5,
		TakeProfitProximityPct:    5,
		MarketVolatilityPct:       60,
		OverallMediumScore:        40,
		OverallHighScore:          60,
		OverallCriticalScore:      80,
		EstimatedVolatilityFactor: 0.5,
	}
}

// PriceProvider holds the configuration for the price history provider.
type PriceProvider struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// PriceRefresher holds the configuration for the background price cache warmer.
type PriceRefresher struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analytics service.
type Config struct {
	App            config.App      `mapstructure:"app"`
	Logger         config.Logger   `mapstructure:"logger"`
	Database       config.Database `mapstructure:"database"`
	Redis          config.Redis    `mapstructure:"redis"`
	API            config.API      `mapstructure:"api"`
	Analytics      Analytics       `mapstructure:"analytics"`
	Thresholds     Thresholds      `mapstructure:"thresholds"`
	PriceProvider  PriceProvider   `mapstructure:"price_provider"`
	PriceRefresher PriceRefresher  `mapstructure:"price_refresher"`
	Telegram       Telegram        `mapstructure:"telegram"`
}

// Load loads the analytics configuration from the given path. Thresholds not
// present in the file keep their v1 defaults.
func Load(path string) (*Config, error) {
	cfg := Config{Thresholds: DefaultThresholds()}
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Analytics.LookbackDays <= 0 {
		cfg.Analytics.LookbackDays = 90
	}
	if cfg.Analytics.RiskFreeRatePct == 0 {
		cfg.Analytics.RiskFreeRatePct = 2.0
	}
	if cfg.Analytics.SummaryTimeout <= 0 {
		cfg.Analytics.SummaryTimeout = 30 * time.Second
	}
	if cfg.Analytics.MaxConcurrent <= 0 {
		cfg.Analytics.MaxConcurrent = 8
	}
	return &cfg, nil
}

package common

const (
	RedisKeyPriceSeries = "price_series:%s:%d"
	RedisKeyLastPrice   = "last_price:%s"

	SectorUnknown = "Unknown"

	TradingDaysPerYear = 252
)

package dto

import "time"

// Candle is one daily closing price.
type Candle struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a chronologically ordered list of daily closes for one
// ticker. Dates are strictly increasing; an empty series is valid and makes
// the metrics calculator fall back to the entry-vs-current estimate.
type PriceSeries struct {
	Ticker  string   `json:"ticker"`
	Candles []Candle `json:"candles"`
}

// Len returns the number of candles.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candles)
}

// LastClose returns the most recent close and its date, or false when empty.
func (s *PriceSeries) LastClose() (float64, time.Time, bool) {
	if s.Len() == 0 {
		return 0, time.Time{}, false
	}
	last := s.Candles[len(s.Candles)-1]
	return last.Close, last.Date, true
}

// GetPriceSeriesParam identifies a price-history request.
type GetPriceSeriesParam struct {
	Ticker       string `json:"ticker"`
	LookbackDays int    `json:"lookback_days"`
}

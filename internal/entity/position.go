package entity

import "time"

type Position struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	PortfolioID    uint       `gorm:"not null" json:"portfolio_id"`
	Ticker         string     `gorm:"not null" json:"ticker"`
	Shares         float64    `gorm:"not null" json:"shares"`
	EntryPrice     float64    `gorm:"not null" json:"entry_price"`
	CurrentPrice   float64    `gorm:"not null" json:"current_price"`
	PriceUpdatedAt time.Time  `gorm:"not null" json:"price_updated_at"`
	StopLoss       *float64   `json:"stop_loss"`
	TakeProfit     *float64   `json:"take_profit"`
	Sector         string     `json:"sector"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// MarketValue returns the position's current market value.
func (p Position) MarketValue() float64 {
	return p.Shares * p.CurrentPrice
}

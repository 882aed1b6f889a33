package entity

import (
	"time"

	"github.com/lib/pq"
)

type Portfolio struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null" json:"user_id"`
	Name         string         `gorm:"not null" json:"name"`
	BaseCurrency string         `gorm:"not null;default:USD" json:"base_currency"`
	Tags         pq.StringArray `gorm:"type:text[]" json:"tags"`
	User         User           `json:"user"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

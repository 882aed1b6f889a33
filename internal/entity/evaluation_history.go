package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

type EvaluationStatus string

const (
	EvaluationStatusRunning   EvaluationStatus = "RUNNING"
	EvaluationStatusCompleted EvaluationStatus = "COMPLETED"
	EvaluationStatusFailed    EvaluationStatus = "FAILED"
)

// EvaluationHistory records one full risk-summary run for a user. The result
// column holds the OverallRiskSummary JSON exactly as returned to the caller.
type EvaluationHistory struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserID       uint             `gorm:"not null" json:"user_id"`
	TriggeredBy  string           `gorm:"not null" json:"triggered_by"`
	Status       EvaluationStatus `gorm:"not null" json:"status"`
	Result       datatypes.JSON   `json:"result"`
	ErrorMessage sql.NullString   `json:"error_message"`
	StartedAt    time.Time        `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime     `json:"completed_at"`
}

func (EvaluationHistory) TableName() string {
	return "evaluation_histories"
}

package repository

import (
	"context"

	"golang-portfolio-analytics/internal/entity"

	"gorm.io/gorm"
)

type EvaluationHistoryRepository interface {
	Create(ctx context.Context, history *entity.EvaluationHistory) error
	Update(ctx context.Context, history *entity.EvaluationHistory) error
	FindByUserID(ctx context.Context, userID uint, limit int) ([]entity.EvaluationHistory, error)
}

type evaluationHistoryRepository struct {
	db *gorm.DB
}

func NewEvaluationHistoryRepository(db *gorm.DB) EvaluationHistoryRepository {
	return &evaluationHistoryRepository{
		db: db,
	}
}

func (r *evaluationHistoryRepository) Create(ctx context.Context, history *entity.EvaluationHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *evaluationHistoryRepository) Update(ctx context.Context, history *entity.EvaluationHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

func (r *evaluationHistoryRepository) FindByUserID(ctx context.Context, userID uint, limit int) ([]entity.EvaluationHistory, error) {
	var histories []entity.EvaluationHistory
	if limit <= 0 {
		limit = 20
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("started_at DESC").Limit(limit).Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}

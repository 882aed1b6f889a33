package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-portfolio-analytics/internal/analytics/dto"
	"golang-portfolio-analytics/internal/entity"

	"gorm.io/gorm"
)

type PortfolioRepository interface {
	GetPortfolios(ctx context.Context, param dto.GetPortfoliosParam) ([]entity.Portfolio, error)
	GetPositions(ctx context.Context, param dto.GetPositionsParam) ([]entity.Position, error)
	GetDistinctTickers(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id uint) (*entity.Portfolio, error)
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{
		db: db,
	}
}

func (r *portfolioRepository) GetPortfolios(ctx context.Context, param dto.GetPortfoliosParam) ([]entity.Portfolio, error) {
	var portfolios []entity.Portfolio

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if len(param.IDs) > 0 {
		qFilter = append(qFilter, "id IN (?)")
		qFilterParam = append(qFilterParam, param.IDs)
	}

	if param.UserID != nil {
		qFilter = append(qFilter, "user_id = ?")
		qFilterParam = append(qFilterParam, *param.UserID)
	}

	if len(qFilter) == 0 {
		return nil, fmt.Errorf("no filter provided")
	}

	if err := r.db.WithContext(ctx).Preload("User").Where(strings.Join(qFilter, " AND "), qFilterParam...).Find(&portfolios).Error; err != nil {
		return nil, err
	}

	return portfolios, nil
}

func (r *portfolioRepository) GetPositions(ctx context.Context, param dto.GetPositionsParam) ([]entity.Position, error) {
	var positions []entity.Position

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if len(param.IDs) > 0 {
		qFilter = append(qFilter, "id IN (?)")
		qFilterParam = append(qFilterParam, param.IDs)
	}

	if len(param.PortfolioIDs) > 0 {
		qFilter = append(qFilter, "portfolio_id IN (?)")
		qFilterParam = append(qFilterParam, param.PortfolioIDs)
	}

	if len(param.Tickers) > 0 {
		qFilter = append(qFilter, "ticker IN (?)")
		qFilterParam = append(qFilterParam, param.Tickers)
	}

	if len(qFilter) == 0 {
		return nil, fmt.Errorf("no filter provided")
	}

	if err := r.db.WithContext(ctx).Where(strings.Join(qFilter, " AND "), qFilterParam...).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (r *portfolioRepository) GetDistinctTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	if err := r.db.WithContext(ctx).Model(&entity.Position{}).Distinct("ticker").Pluck("ticker", &tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

func (r *portfolioRepository) FindByID(ctx context.Context, id uint) (*entity.Portfolio, error) {
	var portfolio entity.Portfolio
	if err := r.db.WithContext(ctx).Preload("User").First(&portfolio, id).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

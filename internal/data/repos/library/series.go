package library

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type SeriesRepo interface {
	Create(ctx context.Context, tx *gorm.DB, series []*types.Series) ([]*types.Series, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Series, error)
}

type seriesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeriesRepo(db *gorm.DB, baseLog *logger.Logger) SeriesRepo {
	repoLog := baseLog.With("repo", "SeriesRepo")
	return &seriesRepo{db: db, log: repoLog}
}

func (r *seriesRepo) Create(ctx context.Context, tx *gorm.DB, series []*types.Series) ([]*types.Series, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(series) == 0 {
		return []*types.Series{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

func (r *seriesRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Series, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Series
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

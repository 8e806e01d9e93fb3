package gamification

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type AchievementRepo interface {
	// CreateIgnoreDuplicates seeds catalog rows, skipping codes that
	// already exist. The catalog is operator-owned; the engine never
	// mutates it outside seeding.
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, achievements []*types.Achievement) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Achievement, error)
	GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.Achievement, error)
	ListByCriteriaTypes(ctx context.Context, tx *gorm.DB, criteriaTypes []string) ([]*types.Achievement, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	repoLog := baseLog.With("repo", "AchievementRepo")
	return &achievementRepo{db: db, log: repoLog}
}

func (r *achievementRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, achievements []*types.Achievement) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(achievements) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(&achievements).Error
}

func (r *achievementRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Achievement
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

func (r *achievementRepo) GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Achievement
	if len(codes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *achievementRepo) ListByCriteriaTypes(ctx context.Context, tx *gorm.DB, criteriaTypes []string) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Achievement
	if len(criteriaTypes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("criteria_type IN ?", criteriaTypes).
		Order("threshold ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *achievementRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Achievement
	if err := transaction.WithContext(ctx).
		Order("threshold ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package library

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type FollowRepo interface {
	// Insert follows a series; a duplicate (user, series) pair returns
	// (false, nil).
	Insert(ctx context.Context, tx *gorm.DB, follow *types.Follow) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID) error
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type followRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	repoLog := baseLog.With("repo", "FollowRepo")
	return &followRepo{db: db, log: repoLog}
}

func (r *followRepo) Insert(ctx context.Context, tx *gorm.DB, follow *types.Follow) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if follow == nil || follow.UserID == uuid.Nil || follow.SeriesID == uuid.Nil {
		return false, gorm.ErrInvalidData
	}

	// ON CONFLICT DO NOTHING keeps the caller's transaction usable when the
	// pair already exists; a raised 23505 would abort it.
	res := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "series_id"}},
		DoNothing: true,
	}).Create(follow)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepo) Delete(ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ? AND series_id = ?", userID, seriesID).
		Delete(&types.Follow{}).Error
}

func (r *followRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if userID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Follow{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

package library

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type LibraryEntryRepo interface {
	// Insert creates a library entry; a duplicate (user, series) pair
	// returns (false, nil).
	Insert(ctx context.Context, tx *gorm.DB, entry *types.LibraryEntry) (bool, error)
	GetByUserAndSeries(ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID) (*types.LibraryEntry, error)
	// GetByUserAndSeriesForUpdate locks the entry row for the remainder of
	// tx; progress writes go through this lock.
	GetByUserAndSeriesForUpdate(ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID) (*types.LibraryEntry, error)
	Save(ctx context.Context, tx *gorm.DB, entry *types.LibraryEntry) error
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LibraryEntry, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CountCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type libraryEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLibraryEntryRepo(db *gorm.DB, baseLog *logger.Logger) LibraryEntryRepo {
	repoLog := baseLog.With("repo", "LibraryEntryRepo")
	return &libraryEntryRepo{db: db, log: repoLog}
}

func (r *libraryEntryRepo) Insert(ctx context.Context, tx *gorm.DB, entry *types.LibraryEntry) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if entry == nil || entry.UserID == uuid.Nil || entry.SeriesID == uuid.Nil {
		return false, gorm.ErrInvalidData
	}

	// ON CONFLICT DO NOTHING keeps the caller's transaction usable when the
	// pair already exists; a raised 23505 would abort it.
	res := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "series_id"}},
		DoNothing: true,
	}).Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *libraryEntryRepo) GetByUserAndSeries(ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID) (*types.LibraryEntry, error) {
	return r.getByUserAndSeries(ctx, tx, userID, seriesID, false)
}

func (r *libraryEntryRepo) GetByUserAndSeriesForUpdate(ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID) (*types.LibraryEntry, error) {
	return r.getByUserAndSeries(ctx, tx, userID, seriesID, true)
}

func (r *libraryEntryRepo) getByUserAndSeries(ctx context.Context, tx *gorm.DB, userID, seriesID uuid.UUID, forUpdate bool) (*types.LibraryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var result types.LibraryEntry
	if err := q.
		Where("user_id = ? AND series_id = ?", userID, seriesID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *libraryEntryRepo) Save(ctx context.Context, tx *gorm.DB, entry *types.LibraryEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if entry == nil || entry.ID == uuid.Nil {
		return gorm.ErrInvalidData
	}
	return transaction.WithContext(ctx).Save(entry).Error
}

func (r *libraryEntryRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LibraryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LibraryEntry
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *libraryEntryRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if userID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.LibraryEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *libraryEntryRepo) CountCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if userID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.LibraryEntry{}).
		Where("user_id = ? AND status = ?", userID, types.StatusCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

package gamification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type TrustViolationRepo interface {
	// Create appends violation rows. The log is append-only; there is no
	// update or delete path.
	Create(ctx context.Context, tx *gorm.DB, violations []*types.TrustViolation) ([]*types.TrustViolation, error)
	CountSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TrustViolation, error)
}

type trustViolationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrustViolationRepo(db *gorm.DB, baseLog *logger.Logger) TrustViolationRepo {
	repoLog := baseLog.With("repo", "TrustViolationRepo")
	return &trustViolationRepo{db: db, log: repoLog}
}

func (r *trustViolationRepo) Create(ctx context.Context, tx *gorm.DB, violations []*types.TrustViolation) ([]*types.TrustViolation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(violations) == 0 {
		return []*types.TrustViolation{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&violations).Error; err != nil {
		return nil, err
	}
	return violations, nil
}

func (r *trustViolationRepo) CountSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if userID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.TrustViolation{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *trustViolationRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TrustViolation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TrustViolation
	if userID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

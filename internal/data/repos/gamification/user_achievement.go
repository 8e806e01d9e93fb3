package gamification

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type UserAchievementRepo interface {
	// Insert attempts the unlock insert. The composite unique index on
	// (user_id, achievement_id) arbitrates concurrent attempts: exactly one
	// insert succeeds and every loser gets (false, nil), never an error.
	// Callers must treat false as "already unlocked, no-op".
	Insert(ctx context.Context, tx *gorm.DB, ua *types.UserAchievement) (bool, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error)
	// UnlockedSet returns which of the given achievements the user already
	// holds.
	UnlockedSet(ctx context.Context, tx *gorm.DB, userID uuid.UUID, achievementIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	repoLog := baseLog.With("repo", "UserAchievementRepo")
	return &userAchievementRepo{db: db, log: repoLog}
}

func (r *userAchievementRepo) Insert(ctx context.Context, tx *gorm.DB, ua *types.UserAchievement) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if ua == nil || ua.UserID == uuid.Nil || ua.AchievementID == uuid.Nil {
		return false, gorm.ErrInvalidData
	}

	// ON CONFLICT DO NOTHING keeps the caller's transaction usable when the
	// row already exists; a raised 23505 would abort it.
	res := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(ua)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userAchievementRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserAchievement
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userAchievementRepo) UnlockedSet(ctx context.Context, tx *gorm.DB, userID uuid.UUID, achievementIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	out := make(map[uuid.UUID]bool, len(achievementIDs))
	if userID == uuid.Nil || len(achievementIDs) == 0 {
		return out, nil
	}

	var rows []*types.UserAchievement
	if err := transaction.WithContext(ctx).
		Select("achievement_id").
		Where("user_id = ? AND achievement_id IN ?", userID, achievementIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.AchievementID] = true
	}
	return out, nil
}

package gamification

import (
	"time"

	"github.com/google/uuid"
)

// UserAchievement is an unlock record. The composite unique index on
// (user_id, achievement_id) is the concurrency primitive for the
// exactly-once unlock guarantee: concurrent unlock attempts race on the
// insert and the loser observes a unique violation.
//
// Rows are insert-only. UnlockedAt is set once and never updated.
type UserAchievement struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement_once;column:user_id" json:"user_id"`
	AchievementID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement_once;column:achievement_id" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null;default:now();column:unlocked_at" json:"unlocked_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }

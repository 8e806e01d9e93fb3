package gamification

import (
	"time"

	"github.com/google/uuid"
)

// Criteria types an achievement can be gated on. Each maps to one
// behavioral counter in the user's stat snapshot.
const (
	CriteriaChapterCount   = "chapter_count"
	CriteriaCompletedCount = "completed_count"
	CriteriaLibraryCount   = "library_count"
	CriteriaFollowCount    = "follow_count"
	CriteriaStreakCount    = "streak_count"
)

// Trigger tags carried by domain events. Used to prune which achievements
// are candidates for a given ledger write.
const (
	TriggerChapterRead     = "chapter_read"
	TriggerSeriesCompleted = "series_completed"
	TriggerSeriesAdded     = "series_added"
	TriggerFollowAdded     = "follow_added"
)

// Achievement is an operator-owned catalog entry. The engine only ever
// reads these rows.
type Achievement struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code         string    `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Name         string    `gorm:"not null;column:name" json:"name"`
	Description  string    `gorm:"column:description" json:"description"`
	CriteriaType string    `gorm:"not null;column:criteria_type" json:"criteria_type"`
	Threshold    int64     `gorm:"not null;column:threshold" json:"threshold"`
	XPReward     int64     `gorm:"not null;default:0;column:xp_reward" json:"xp_reward"`
	Rarity       string    `gorm:"not null;default:'common';column:rarity" json:"rarity"`
	IsHidden     bool      `gorm:"not null;default:false;column:is_hidden" json:"is_hidden"`
	IsSeasonal   bool      `gorm:"not null;default:false;column:is_seasonal" json:"is_seasonal"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Achievement) TableName() string { return "achievement" }

func ValidCriteriaType(t string) bool {
	switch t {
	case CriteriaChapterCount, CriteriaCompletedCount, CriteriaLibraryCount,
		CriteriaFollowCount, CriteriaStreakCount:
		return true
	default:
		return false
	}
}

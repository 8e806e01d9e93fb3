package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password   string    `gorm:"not null;column:password" json:"-"`
	AvatarPath string    `gorm:"column:avatar_path" json:"-"`
	AvatarURL  string    `gorm:"column:avatar_url" json:"avatar_url"`

	// Gamification ledger. XP is lifetime and monotonic; SeasonXP resets on
	// season rollover. Level is derived from XP and cached here.
	XP            int64  `gorm:"not null;default:0;column:xp" json:"xp"`
	Level         int    `gorm:"not null;default:1;column:level" json:"level"`
	SeasonXP      int64  `gorm:"not null;default:0;column:season_xp" json:"season_xp"`
	CurrentSeason string `gorm:"column:current_season" json:"current_season"`

	// TrustScore stays in [0.5, 1.0]. It weights leaderboard rankings and is
	// never exposed through ranking payloads.
	TrustScore      float64    `gorm:"not null;default:1.0;column:trust_score" json:"-"`
	LastViolationAt *time.Time `gorm:"column:last_violation_at" json:"-"`

	// Behavioral counters.
	ChaptersRead   int64      `gorm:"not null;default:0;column:chapters_read" json:"chapters_read"`
	StreakDays     int        `gorm:"not null;default:0;column:streak_days" json:"streak_days"`
	ActiveDays     int        `gorm:"not null;default:0;column:active_days" json:"active_days"`
	LastActiveDate *time.Time `gorm:"column:last_active_date" json:"-"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

package library

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusReading    = "reading"
	StatusCompleted  = "completed"
	StatusPlanToRead = "plan_to_read"
	StatusDropped    = "dropped"
)

// LibraryEntry tracks one user's relationship to one series. Unique per
// (user_id, series_id); CompletedAt is set on the first transition to
// completed and gates the one-time completion XP grant.
type LibraryEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_library_entry_user_series;column:user_id" json:"user_id"`
	SeriesID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_library_entry_user_series;column:series_id" json:"series_id"`
	Status      string     `gorm:"not null;default:'reading';column:status" json:"status"`
	LastChapter float64    `gorm:"not null;default:0;column:last_chapter" json:"last_chapter"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LibraryEntry) TableName() string { return "library_entry" }

func ValidStatus(s string) bool {
	switch s {
	case StatusReading, StatusCompleted, StatusPlanToRead, StatusDropped:
		return true
	default:
		return false
	}
}

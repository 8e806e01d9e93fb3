package library

import (
	"time"

	"github.com/google/uuid"
)

// Follow subscribes a user to a series for release updates. Unique per
// (user_id, series_id).
type Follow struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_user_series;column:user_id" json:"user_id"`
	SeriesID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_user_series;column:series_id" json:"series_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Follow) TableName() string { return "follow" }

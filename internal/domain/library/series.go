package library

import (
	"time"

	"github.com/google/uuid"
)

// Series is the minimal catalog row the engine needs so that library
// entries and follows resolve. Metadata enrichment lives elsewhere.
type Series struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title         string    `gorm:"not null;column:title" json:"title"`
	TotalChapters int       `gorm:"not null;default:0;column:total_chapters" json:"total_chapters"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Series) TableName() string { return "series" }

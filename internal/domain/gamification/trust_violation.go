package gamification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Violation types recorded by the soft abuse tier.
const (
	ViolationSpeedRead           = "speed_read"
	ViolationBulkSpeedRead       = "bulk_speed_read"
	ViolationRapidCompletion     = "rapid_completion"
	ViolationDuplicateSubmission = "duplicate_submission"
)

// TrustViolation is an append-only audit row. Violations are never deleted;
// only their effect on the trust score decays over time.
type TrustViolation struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	ViolationType string         `gorm:"not null;column:violation_type" json:"violation_type"`
	Metadata      datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt     time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (TrustViolation) TableName() string { return "trust_violation" }

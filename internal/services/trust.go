package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/gamify"
	"github.com/yomikata/yomikata-backend/internal/pkg/errors"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

const recentViolationWindow = 30 * 24 * time.Hour

// TrustStatus is the self-view aggregate. The score itself is never part
// of any ranking payload.
type TrustStatus struct {
	TrustScore           float64                 `json:"trust_score"`
	LeaderboardEligible  bool                    `json:"leaderboard_eligible"`
	DaysUntilRecovery    int                     `json:"days_until_recovery"`
	RecentViolationCount int64                   `json:"recent_violation_count"`
	RecentViolations     []*types.TrustViolation `json:"recent_violations"`
}

type TrustService interface {
	// RecordViolation appends an audit row and applies its penalty to the
	// user's trust score in one transaction. Pending passive recovery is
	// materialized first so a violation after a long clean stretch starts
	// from the recovered score. Returns the new stored score.
	RecordViolation(ctx context.Context, userID uuid.UUID, violationType string, metadata map[string]interface{}) (float64, error)
	GetTrustStatus(ctx context.Context, userID uuid.UUID) (*TrustStatus, error)
	// EffectiveScore reads the decay-adjusted score without persisting.
	EffectiveScore(ctx context.Context, userID uuid.UUID) (float64, error)
}

type trustService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	violationRepo repos.TrustViolationRepo
}

func NewTrustService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, violationRepo repos.TrustViolationRepo) TrustService {
	serviceLog := log.With("service", "TrustService")
	return &trustService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		violationRepo: violationRepo,
	}
}

func (s *trustService) RecordViolation(ctx context.Context, userID uuid.UUID, violationType string, metadata map[string]interface{}) (float64, error) {
	var newScore float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("record violation: load user: %w", err)
		}

		now := time.Now().UTC()
		effective := effectiveTrust(user, now)
		newScore = gamify.ClampTrust(effective - gamify.ViolationPenalty(violationType))

		if err := s.userRepo.UpdateTrust(ctx, tx, userID, newScore, now); err != nil {
			return fmt.Errorf("record violation: update trust: %w", err)
		}

		var meta datatypes.JSON
		if len(metadata) > 0 {
			raw, err := json.Marshal(metadata)
			if err != nil {
				return fmt.Errorf("record violation: marshal metadata: %w", err)
			}
			meta = datatypes.JSON(raw)
		}
		if _, err := s.violationRepo.Create(ctx, tx, []*types.TrustViolation{{
			ID:            uuid.New(),
			UserID:        userID,
			ViolationType: violationType,
			Metadata:      meta,
		}}); err != nil {
			return fmt.Errorf("record violation: append violation: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Warn("Trust violation recorded",
		"user_id", userID.String(),
		"violation_type", violationType,
		"trust_score", newScore,
	)
	return newScore, nil
}

func (s *trustService) GetTrustStatus(ctx context.Context, userID uuid.UUID) (*TrustStatus, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("trust status: load user: %w", err)
	}
	if len(users) == 0 {
		return nil, errors.ErrNotFound
	}
	user := users[0]

	now := time.Now().UTC()
	effective := effectiveTrust(user, now)

	since := now.Add(-recentViolationWindow)
	count, err := s.violationRepo.CountSince(ctx, nil, userID, since)
	if err != nil {
		return nil, fmt.Errorf("trust status: count violations: %w", err)
	}
	recent, err := s.violationRepo.ListByUserID(ctx, nil, userID, 20)
	if err != nil {
		return nil, fmt.Errorf("trust status: list violations: %w", err)
	}

	return &TrustStatus{
		TrustScore:           effective,
		LeaderboardEligible:  effective >= gamify.TrustScoreMinForLeaderboard,
		DaysUntilRecovery:    gamify.DaysUntilFullTrust(effective),
		RecentViolationCount: count,
		RecentViolations:     recent,
	}, nil
}

func (s *trustService) EffectiveScore(ctx context.Context, userID uuid.UUID) (float64, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return 0, fmt.Errorf("effective trust: load user: %w", err)
	}
	if len(users) == 0 {
		return 0, errors.ErrNotFound
	}
	return effectiveTrust(users[0], time.Now().UTC()), nil
}

// effectiveTrust applies passive recovery accrued since the last violation.
// The stored score only changes when a violation lands.
func effectiveTrust(user *types.User, now time.Time) float64 {
	if user.LastViolationAt == nil {
		return gamify.ClampTrust(user.TrustScore)
	}
	days := now.Sub(*user.LastViolationAt).Hours() / 24.0
	return gamify.ApplyDecay(user.TrustScore, days)
}

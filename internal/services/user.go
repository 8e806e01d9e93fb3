package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	"github.com/yomikata/yomikata-backend/internal/gamify"
	"github.com/yomikata/yomikata-backend/internal/pkg/errors"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

// Profile is the self-view of a user's ledger. Trust internals live behind
// GET /me/trust, not here.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	AvatarURL      string    `json:"avatar_url"`
	XP             int64     `json:"xp"`
	Level          int       `json:"level"`
	LevelProgress  float64   `json:"level_progress"`
	XPForNextLevel int64     `json:"xp_for_next_level"`
	SeasonXP       int64     `json:"season_xp"`
	CurrentSeason  string    `json:"current_season"`
	ChaptersRead   int64     `json:"chapters_read"`
	StreakDays     int       `json:"streak_days"`
	ActiveDays     int       `json:"active_days"`
	LibraryCount   int64     `json:"library_count"`
	CompletedCount int64     `json:"completed_count"`
	FollowCount    int64     `json:"follow_count"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
}

type userService struct {
	db               *gorm.DB
	log              *logger.Logger
	userRepo         repos.UserRepo
	libraryEntryRepo repos.LibraryEntryRepo
	followRepo       repos.FollowRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, libraryEntryRepo repos.LibraryEntryRepo, followRepo repos.FollowRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:               db,
		log:              serviceLog,
		userRepo:         userRepo,
		libraryEntryRepo: libraryEntryRepo,
		followRepo:       followRepo,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("get profile: load user: %w", err)
	}
	if len(users) == 0 {
		return nil, errors.ErrNotFound
	}
	user := users[0]

	libraryCount, err := s.libraryEntryRepo.CountByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: count library: %w", err)
	}
	completedCount, err := s.libraryEntryRepo.CountCompletedByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: count completed: %w", err)
	}
	followCount, err := s.followRepo.CountByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: count follows: %w", err)
	}

	season := user.CurrentSeason
	if normalized, ok := gamify.NormalizeSeason(season); ok {
		season = normalized
	}

	return &Profile{
		ID:             user.ID,
		Username:       user.Username,
		AvatarURL:      user.AvatarURL,
		XP:             user.XP,
		Level:          user.Level,
		LevelProgress:  gamify.LevelProgress(user.XP),
		XPForNextLevel: gamify.XPForLevel(user.Level + 1),
		SeasonXP:       user.SeasonXP,
		CurrentSeason:  season,
		ChaptersRead:   user.ChaptersRead,
		StreakDays:     user.StreakDays,
		ActiveDays:     user.ActiveDays,
		LibraryCount:   libraryCount,
		CompletedCount: completedCount,
		FollowCount:    followCount,
	}, nil
}

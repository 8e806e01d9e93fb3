package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/gamify"
	"github.com/yomikata/yomikata-backend/internal/pkg/errors"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

// UnlockedAchievement is the caller-facing record of a single unlock made
// by this call. Unlocks from earlier calls never appear here.
type UnlockedAchievement struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	XPReward int64  `json:"xp_reward"`
	Rarity   string `json:"rarity"`
}

type AchievementService interface {
	// CheckAchievements evaluates every candidate achievement for the given
	// trigger inside the caller's open transaction, inserts unlock rows and
	// applies their XP rewards. The unique index on (user_id,
	// achievement_id) makes concurrent evaluation safe: a lost insert race
	// is a silent no-op and contributes no reward.
	CheckAchievements(ctx context.Context, tx *gorm.DB, userID uuid.UUID, trigger string) ([]UnlockedAchievement, error)
	ListCatalog(ctx context.Context) ([]*types.Achievement, error)
	ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*UserAchievementStatus, error)
}

// UserAchievementStatus pairs a catalog entry with the user's standing
// toward it. Hidden achievements are omitted until unlocked.
type UserAchievementStatus struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Rarity      string  `json:"rarity"`
	XPReward    int64   `json:"xp_reward"`
	Threshold   int64   `json:"threshold"`
	Current     int64   `json:"current"`
	Unlocked    bool    `json:"unlocked"`
	Progress    float64 `json:"progress"`
}

// triggerCriteria prunes the candidate set per trigger so a chapter read
// does not re-evaluate follow achievements.
var triggerCriteria = map[string][]string{
	types.TriggerChapterRead:     {types.CriteriaChapterCount, types.CriteriaStreakCount},
	types.TriggerSeriesCompleted: {types.CriteriaCompletedCount},
	types.TriggerSeriesAdded:     {types.CriteriaLibraryCount},
	types.TriggerFollowAdded:     {types.CriteriaFollowCount},
}

type achievementService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	userRepo            repos.UserRepo
	achievementRepo     repos.AchievementRepo
	userAchievementRepo repos.UserAchievementRepo
	libraryEntryRepo    repos.LibraryEntryRepo
	followRepo          repos.FollowRepo
}

func NewAchievementService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	achievementRepo repos.AchievementRepo,
	userAchievementRepo repos.UserAchievementRepo,
	libraryEntryRepo repos.LibraryEntryRepo,
	followRepo repos.FollowRepo,
) AchievementService {
	serviceLog := log.With("service", "AchievementService")
	return &achievementService{
		db:                  db,
		log:                 serviceLog,
		userRepo:            userRepo,
		achievementRepo:     achievementRepo,
		userAchievementRepo: userAchievementRepo,
		libraryEntryRepo:    libraryEntryRepo,
		followRepo:          followRepo,
	}
}

func (s *achievementService) CheckAchievements(ctx context.Context, tx *gorm.DB, userID uuid.UUID, trigger string) ([]UnlockedAchievement, error) {
	if tx == nil {
		return nil, fmt.Errorf("check achievements: open transaction required")
	}
	criteria, ok := triggerCriteria[trigger]
	if !ok {
		return nil, fmt.Errorf("check achievements: unknown trigger %q: %w", trigger, errors.ErrInvalidArgument)
	}

	// Contention reducer only; correctness comes from the unique index.
	if err := advisoryXactLock(tx, "achievement_unlock", userID); err != nil {
		return nil, fmt.Errorf("check achievements: advisory lock: %w", err)
	}

	user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("check achievements: load user: %w", err)
	}

	candidates, err := s.achievementRepo.ListByCriteriaTypes(ctx, tx, criteria)
	if err != nil {
		return nil, fmt.Errorf("check achievements: load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, a := range candidates {
		ids = append(ids, a.ID)
	}
	unlocked, err := s.userAchievementRepo.UnlockedSet(ctx, tx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("check achievements: load unlocked set: %w", err)
	}

	stats, err := s.statSnapshot(ctx, tx, user, criteria)
	if err != nil {
		return nil, err
	}

	var newUnlocks []UnlockedAchievement
	var rewardTotal int64
	for _, a := range candidates {
		if unlocked[a.ID] {
			continue
		}
		if stats[a.CriteriaType] < a.Threshold {
			continue
		}
		created, err := s.userAchievementRepo.Insert(ctx, tx, &types.UserAchievement{
			ID:            uuid.New(),
			UserID:        userID,
			AchievementID: a.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("check achievements: insert unlock %s: %w", a.Code, err)
		}
		if !created {
			// Lost the race to a concurrent transaction. Their unlock,
			// their reward.
			continue
		}
		rewardTotal += a.XPReward
		newUnlocks = append(newUnlocks, UnlockedAchievement{
			Code:     a.Code,
			Name:     a.Name,
			XPReward: a.XPReward,
			Rarity:   a.Rarity,
		})
	}

	if rewardTotal > 0 {
		user.XP = gamify.AddXP(user.XP, rewardTotal)
		user.SeasonXP = gamify.AddXP(user.SeasonXP, rewardTotal)
		user.Level = gamify.CalculateLevel(user.XP)
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return nil, fmt.Errorf("check achievements: apply rewards: %w", err)
		}
		s.log.Info("Achievements unlocked",
			"user_id", userID.String(),
			"trigger", trigger,
			"count", len(newUnlocks),
			"xp_reward", rewardTotal,
		)
	}
	return newUnlocks, nil
}

// statSnapshot resolves the current counter per criteria type, reading
// count-backed criteria only when the trigger can need them.
func (s *achievementService) statSnapshot(ctx context.Context, tx *gorm.DB, user *types.User, criteria []string) (map[string]int64, error) {
	stats := make(map[string]int64, len(criteria))
	for _, c := range criteria {
		switch c {
		case types.CriteriaChapterCount:
			stats[c] = user.ChaptersRead
		case types.CriteriaStreakCount:
			stats[c] = int64(user.StreakDays)
		case types.CriteriaCompletedCount:
			n, err := s.libraryEntryRepo.CountCompletedByUserID(ctx, tx, user.ID)
			if err != nil {
				return nil, fmt.Errorf("check achievements: count completed: %w", err)
			}
			stats[c] = n
		case types.CriteriaLibraryCount:
			n, err := s.libraryEntryRepo.CountByUserID(ctx, tx, user.ID)
			if err != nil {
				return nil, fmt.Errorf("check achievements: count library: %w", err)
			}
			stats[c] = n
		case types.CriteriaFollowCount:
			n, err := s.followRepo.CountByUserID(ctx, tx, user.ID)
			if err != nil {
				return nil, fmt.Errorf("check achievements: count follows: %w", err)
			}
			stats[c] = n
		default:
			return nil, fmt.Errorf("check achievements: unknown criteria type %q", c)
		}
	}
	return stats, nil
}

func (s *achievementService) ListCatalog(ctx context.Context) ([]*types.Achievement, error) {
	all, err := s.achievementRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list achievement catalog: %w", err)
	}
	visible := make([]*types.Achievement, 0, len(all))
	for _, a := range all {
		if a.IsHidden {
			continue
		}
		visible = append(visible, a)
	}
	return visible, nil
}

func (s *achievementService) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*UserAchievementStatus, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("list user achievements: load user: %w", err)
	}
	if len(users) == 0 {
		return nil, errors.ErrNotFound
	}
	user := users[0]

	all, err := s.achievementRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: load catalog: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(all))
	for _, a := range all {
		ids = append(ids, a.ID)
	}
	unlocked, err := s.userAchievementRepo.UnlockedSet(ctx, nil, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: load unlocked set: %w", err)
	}

	completedCount, err := s.libraryEntryRepo.CountCompletedByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: count completed: %w", err)
	}
	libraryCount, err := s.libraryEntryRepo.CountByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: count library: %w", err)
	}
	followCount, err := s.followRepo.CountByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: count follows: %w", err)
	}
	stats := map[string]int64{
		types.CriteriaChapterCount:   user.ChaptersRead,
		types.CriteriaStreakCount:    int64(user.StreakDays),
		types.CriteriaCompletedCount: completedCount,
		types.CriteriaLibraryCount:   libraryCount,
		types.CriteriaFollowCount:    followCount,
	}

	out := make([]*UserAchievementStatus, 0, len(all))
	for _, a := range all {
		isUnlocked := unlocked[a.ID]
		if a.IsHidden && !isUnlocked {
			continue
		}
		current := stats[a.CriteriaType]
		progress := 1.0
		if !isUnlocked && a.Threshold > 0 {
			progress = float64(current) / float64(a.Threshold)
			if progress > 1 {
				progress = 1
			}
		}
		out = append(out, &UserAchievementStatus{
			Code:        a.Code,
			Name:        a.Name,
			Description: a.Description,
			Rarity:      a.Rarity,
			XPReward:    a.XPReward,
			Threshold:   a.Threshold,
			Current:     current,
			Unlocked:    isUnlocked,
			Progress:    progress,
		})
	}
	return out, nil
}

package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/gamify"
	"github.com/yomikata/yomikata-backend/internal/pkg/errors"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

// ChapterReadInput is one chapter-read submission. SecondsSpent and
// PageCount are client-reported and feed the soft abuse tier only.
type ChapterReadInput struct {
	SeriesID     uuid.UUID
	Chapter      float64
	SecondsSpent int
	PageCount    int
}

// ProgressResult is the ledger state returned to the reader after a
// progress operation. Trust data never appears here.
type ProgressResult struct {
	XP              int64                 `json:"xp"`
	Level           int                   `json:"level"`
	LevelProgress   float64               `json:"level_progress"`
	SeasonXP        int64                 `json:"season_xp"`
	ChaptersRead    int64                 `json:"chapters_read"`
	StreakDays      int                   `json:"streak_days"`
	XPGranted       int64                 `json:"xp_granted"`
	NewAchievements []UnlockedAchievement `json:"new_achievements"`
}

type ProgressService interface {
	// RecordChapterRead is the main trigger path: one transaction covering
	// season rollover, streak bookkeeping, progress write, XP grant and
	// achievement checks. The hard abuse gate can strip the XP portion of a
	// single request; progress always lands. Soft-tier pace validation runs
	// after commit.
	RecordChapterRead(ctx context.Context, userID uuid.UUID, input ChapterReadInput) (*ProgressResult, error)
	CompleteSeries(ctx context.Context, userID, seriesID uuid.UUID) (*ProgressResult, error)
	AddToLibrary(ctx context.Context, userID, seriesID uuid.UUID, status string) (*ProgressResult, error)
	UpdateStatus(ctx context.Context, userID, seriesID uuid.UUID, status string) (*ProgressResult, error)
	FollowSeries(ctx context.Context, userID, seriesID uuid.UUID) (*ProgressResult, error)
	UnfollowSeries(ctx context.Context, userID, seriesID uuid.UUID) error
}

type progressService struct {
	db                 *gorm.DB
	log                *logger.Logger
	userRepo           repos.UserRepo
	seriesRepo         repos.SeriesRepo
	libraryEntryRepo   repos.LibraryEntryRepo
	followRepo         repos.FollowRepo
	achievementService AchievementService
	trustService       TrustService
	abuseService       AbuseService
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	seriesRepo repos.SeriesRepo,
	libraryEntryRepo repos.LibraryEntryRepo,
	followRepo repos.FollowRepo,
	achievementService AchievementService,
	trustService TrustService,
	abuseService AbuseService,
) ProgressService {
	serviceLog := log.With("service", "ProgressService")
	return &progressService{
		db:                 db,
		log:                serviceLog,
		userRepo:           userRepo,
		seriesRepo:         seriesRepo,
		libraryEntryRepo:   libraryEntryRepo,
		followRepo:         followRepo,
		achievementService: achievementService,
		trustService:       trustService,
		abuseService:       abuseService,
	}
}

func (s *progressService) RecordChapterRead(ctx context.Context, userID uuid.UUID, input ChapterReadInput) (*ProgressResult, error) {
	if input.Chapter < 0 {
		return nil, fmt.Errorf("chapter must be non-negative: %w", errors.ErrInvalidArgument)
	}
	if err := s.requireSeries(ctx, input.SeriesID); err != nil {
		return nil, err
	}

	// Previous position read outside the transaction; the gate windows live
	// in the window store, not the database.
	var prevChapter float64
	if entry, err := s.libraryEntryRepo.GetByUserAndSeries(ctx, nil, userID, input.SeriesID); err == nil {
		prevChapter = entry.LastChapter
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("record chapter read: load entry: %w", err)
	}

	ev := ReadEvent{
		UserID:       userID,
		SeriesID:     input.SeriesID,
		Chapter:      input.Chapter,
		PrevChapter:  prevChapter,
		SecondsSpent: input.SecondsSpent,
		PageCount:    input.PageCount,
	}
	bot := s.abuseService.DetectBotPatterns(ctx, ev)
	if bot.IsBot {
		s.log.Warn("Bot pattern detected, gating XP for request",
			"user_id", userID.String(),
			"pattern", bot.Pattern,
		)
	}

	now := time.Now().UTC()
	var result *ProgressResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("record chapter read: load user: %w", err)
		}
		rolloverSeason(user, now)
		touchActivity(user, now)

		entry, err := s.libraryEntryRepo.GetByUserAndSeriesForUpdate(ctx, tx, userID, input.SeriesID)
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			entry = &types.LibraryEntry{
				ID:       uuid.New(),
				UserID:   userID,
				SeriesID: input.SeriesID,
				Status:   types.StatusReading,
			}
			if _, err := s.libraryEntryRepo.Insert(ctx, tx, entry); err != nil {
				return fmt.Errorf("record chapter read: create entry: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("record chapter read: lock entry: %w", err)
		}

		if input.Chapter > entry.LastChapter {
			entry.LastChapter = input.Chapter
		}
		if err := s.libraryEntryRepo.Save(ctx, tx, entry); err != nil {
			return fmt.Errorf("record chapter read: save entry: %w", err)
		}

		user.ChaptersRead++
		var granted int64
		if !bot.IsBot {
			granted = gamify.XPPerChapterRead
			user.XP = gamify.AddXP(user.XP, granted)
			user.SeasonXP = gamify.AddXP(user.SeasonXP, granted)
			user.Level = gamify.CalculateLevel(user.XP)
		}
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return fmt.Errorf("record chapter read: save user: %w", err)
		}

		var unlocks []UnlockedAchievement
		if !bot.IsBot {
			unlocks, err = s.achievementService.CheckAchievements(ctx, tx, userID, types.TriggerChapterRead)
			if err != nil {
				return err
			}
			for _, u := range unlocks {
				granted += u.XPReward
			}
		}

		result, err = s.buildResult(ctx, tx, userID, granted, unlocks)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Soft tier runs outside the ledger transaction and never blocks the
	// grant that just committed.
	if verdict := s.abuseService.ValidateReadTime(ctx, ev); verdict.IsSuspicious {
		if _, err := s.trustService.RecordViolation(ctx, userID, verdict.ViolationType, map[string]interface{}{
			"series_id":     input.SeriesID.String(),
			"chapter":       input.Chapter,
			"seconds_spent": input.SecondsSpent,
			"floor_seconds": verdict.FloorSeconds,
		}); err != nil {
			s.log.Error("Failed to record read-pace violation", "error", err, "user_id", userID.String())
		}
	}
	return result, nil
}

func (s *progressService) CompleteSeries(ctx context.Context, userID, seriesID uuid.UUID) (*ProgressResult, error) {
	return s.UpdateStatus(ctx, userID, seriesID, types.StatusCompleted)
}

func (s *progressService) UpdateStatus(ctx context.Context, userID, seriesID uuid.UUID, status string) (*ProgressResult, error) {
	if !types.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q: %w", status, errors.ErrInvalidArgument)
	}
	series, err := s.getSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	bot := s.abuseService.NoteStatusToggle(ctx, userID, seriesID)
	if bot.IsBot {
		s.log.Warn("Status toggle burst, gating XP for request",
			"user_id", userID.String(),
			"pattern", bot.Pattern,
		)
	}

	now := time.Now().UTC()
	var result *ProgressResult
	var completedEntry *types.LibraryEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("update status: load user: %w", err)
		}
		rolloverSeason(user, now)

		entry, err := s.libraryEntryRepo.GetByUserAndSeriesForUpdate(ctx, tx, userID, seriesID)
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("update status: %w", errors.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update status: lock entry: %w", err)
		}

		entry.Status = status
		var granted int64
		firstCompletion := status == types.StatusCompleted && entry.CompletedAt == nil
		if firstCompletion {
			completedAt := now
			entry.CompletedAt = &completedAt
			if float64(series.TotalChapters) > entry.LastChapter {
				entry.LastChapter = float64(series.TotalChapters)
			}
			if !bot.IsBot {
				granted = gamify.XPSeriesCompleted
				user.XP = gamify.AddXP(user.XP, granted)
				user.SeasonXP = gamify.AddXP(user.SeasonXP, granted)
				user.Level = gamify.CalculateLevel(user.XP)
			}
		}

		if err := s.libraryEntryRepo.Save(ctx, tx, entry); err != nil {
			return fmt.Errorf("update status: save entry: %w", err)
		}
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return fmt.Errorf("update status: save user: %w", err)
		}

		var unlocks []UnlockedAchievement
		if firstCompletion && !bot.IsBot {
			unlocks, err = s.achievementService.CheckAchievements(ctx, tx, userID, types.TriggerSeriesCompleted)
			if err != nil {
				return err
			}
			for _, u := range unlocks {
				granted += u.XPReward
			}
		}
		if firstCompletion {
			completedEntry = entry
		}

		result, err = s.buildResult(ctx, tx, userID, granted, unlocks)
		return err
	})
	if err != nil {
		return nil, err
	}

	if completedEntry != nil && s.abuseService.IsRapidCompletion(completedEntry.CreatedAt, series.TotalChapters, now) {
		if _, err := s.trustService.RecordViolation(ctx, userID, types.ViolationRapidCompletion, map[string]interface{}{
			"series_id":      seriesID.String(),
			"total_chapters": series.TotalChapters,
			"entry_age_sec":  int(now.Sub(completedEntry.CreatedAt).Seconds()),
		}); err != nil {
			s.log.Error("Failed to record rapid-completion violation", "error", err, "user_id", userID.String())
		}
	}
	return result, nil
}

func (s *progressService) AddToLibrary(ctx context.Context, userID, seriesID uuid.UUID, status string) (*ProgressResult, error) {
	if status == "" {
		status = types.StatusReading
	}
	if !types.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q: %w", status, errors.ErrInvalidArgument)
	}
	if err := s.requireSeries(ctx, seriesID); err != nil {
		return nil, err
	}

	var result *ProgressResult
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("add to library: load user: %w", err)
		}
		rolloverSeason(user, now)
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return fmt.Errorf("add to library: save user: %w", err)
		}

		created, err := s.libraryEntryRepo.Insert(ctx, tx, &types.LibraryEntry{
			ID:       uuid.New(),
			UserID:   userID,
			SeriesID: seriesID,
			Status:   status,
		})
		if err != nil {
			return fmt.Errorf("add to library: %w", err)
		}

		var unlocks []UnlockedAchievement
		var granted int64
		if created {
			unlocks, err = s.achievementService.CheckAchievements(ctx, tx, userID, types.TriggerSeriesAdded)
			if err != nil {
				return err
			}
			for _, u := range unlocks {
				granted += u.XPReward
			}
		}

		result, err = s.buildResult(ctx, tx, userID, granted, unlocks)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *progressService) FollowSeries(ctx context.Context, userID, seriesID uuid.UUID) (*ProgressResult, error) {
	if err := s.requireSeries(ctx, seriesID); err != nil {
		return nil, err
	}

	var result *ProgressResult
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("follow series: load user: %w", err)
		}
		rolloverSeason(user, now)
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return fmt.Errorf("follow series: save user: %w", err)
		}

		created, err := s.followRepo.Insert(ctx, tx, &types.Follow{
			ID:       uuid.New(),
			UserID:   userID,
			SeriesID: seriesID,
		})
		if err != nil {
			return fmt.Errorf("follow series: %w", err)
		}

		var unlocks []UnlockedAchievement
		var granted int64
		if created {
			unlocks, err = s.achievementService.CheckAchievements(ctx, tx, userID, types.TriggerFollowAdded)
			if err != nil {
				return err
			}
			for _, u := range unlocks {
				granted += u.XPReward
			}
		}

		result, err = s.buildResult(ctx, tx, userID, granted, unlocks)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *progressService) UnfollowSeries(ctx context.Context, userID, seriesID uuid.UUID) error {
	if err := s.followRepo.Delete(ctx, nil, userID, seriesID); err != nil {
		return fmt.Errorf("unfollow series: %w", err)
	}
	return nil
}

func (s *progressService) requireSeries(ctx context.Context, seriesID uuid.UUID) error {
	_, err := s.getSeries(ctx, seriesID)
	return err
}

func (s *progressService) getSeries(ctx context.Context, seriesID uuid.UUID) (*types.Series, error) {
	series, err := s.seriesRepo.GetByIDs(ctx, nil, []uuid.UUID{seriesID})
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("series %s: %w", seriesID, errors.ErrNotFound)
	}
	return series[0], nil
}

// buildResult re-reads the user inside tx so achievement rewards applied by
// CheckAchievements are reflected in the response.
func (s *progressService) buildResult(ctx context.Context, tx *gorm.DB, userID uuid.UUID, granted int64, unlocks []UnlockedAchievement) (*ProgressResult, error) {
	users, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load result state: %w", err)
	}
	if len(users) == 0 {
		return nil, errors.ErrNotFound
	}
	user := users[0]
	if unlocks == nil {
		unlocks = []UnlockedAchievement{}
	}
	return &ProgressResult{
		XP:              user.XP,
		Level:           user.Level,
		LevelProgress:   gamify.LevelProgress(user.XP),
		SeasonXP:        user.SeasonXP,
		ChaptersRead:    user.ChaptersRead,
		StreakDays:      user.StreakDays,
		XPGranted:       granted,
		NewAchievements: unlocks,
	}, nil
}

// rolloverSeason lazily resets season XP when the user's stored season no
// longer matches the calendar quarter. Runs before any grant in the same
// transaction, so the first write of a new quarter starts from zero.
func rolloverSeason(user *types.User, now time.Time) {
	current := gamify.SeasonCode(now)
	normalized, ok := gamify.NormalizeSeason(user.CurrentSeason)
	if ok && normalized == current {
		return
	}
	user.SeasonXP = 0
	user.CurrentSeason = current
}

// touchActivity maintains the daily streak and active-day counters. A day
// boundary is UTC midnight.
func touchActivity(user *types.User, now time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if user.LastActiveDate != nil {
		last := user.LastActiveDate.UTC()
		lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
		if lastDay.Equal(today) {
			return
		}
		if today.Sub(lastDay) == 24*time.Hour {
			user.StreakDays++
		} else {
			user.StreakDays = 1
		}
	} else {
		user.StreakDays = 1
	}
	user.ActiveDays++
	user.LastActiveDate = &today
}

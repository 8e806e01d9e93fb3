package app

import (
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	Series          repos.SeriesRepo
	LibraryEntry    repos.LibraryEntryRepo
	Follow          repos.FollowRepo
	Achievement     repos.AchievementRepo
	UserAchievement repos.UserAchievementRepo
	TrustViolation  repos.TrustViolationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Series:          repos.NewSeriesRepo(db, log),
		LibraryEntry:    repos.NewLibraryEntryRepo(db, log),
		Follow:          repos.NewFollowRepo(db, log),
		Achievement:     repos.NewAchievementRepo(db, log),
		UserAchievement: repos.NewUserAchievementRepo(db, log),
		TrustViolation:  repos.NewTrustViolationRepo(db, log),
	}
}

package repos

import (
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos/gamification"
	"github.com/yomikata/yomikata-backend/internal/data/repos/library"
	"github.com/yomikata/yomikata-backend/internal/data/repos/user"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type LeaderboardRow = user.LeaderboardRow

type AchievementRepo = gamification.AchievementRepo
type UserAchievementRepo = gamification.UserAchievementRepo
type TrustViolationRepo = gamification.TrustViolationRepo

type SeriesRepo = library.SeriesRepo
type LibraryEntryRepo = library.LibraryEntryRepo
type FollowRepo = library.FollowRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return gamification.NewAchievementRepo(db, baseLog)
}
func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return gamification.NewUserAchievementRepo(db, baseLog)
}
func NewTrustViolationRepo(db *gorm.DB, baseLog *logger.Logger) TrustViolationRepo {
	return gamification.NewTrustViolationRepo(db, baseLog)
}

func NewSeriesRepo(db *gorm.DB, baseLog *logger.Logger) SeriesRepo {
	return library.NewSeriesRepo(db, baseLog)
}
func NewLibraryEntryRepo(db *gorm.DB, baseLog *logger.Logger) LibraryEntryRepo {
	return library.NewLibraryEntryRepo(db, baseLog)
}
func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return library.NewFollowRepo(db, baseLog)
}

package app

import (
	"gorm.io/gorm"

	redisclient "github.com/yomikata/yomikata-backend/internal/clients/redis"
	"github.com/yomikata/yomikata-backend/internal/platform/localmedia"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type Services struct {
	Media       localmedia.Store
	Windows     redisclient.WindowStore
	Avatar      services.AvatarService
	Auth        services.AuthService
	User        services.UserService
	Series      services.SeriesService
	Achievement services.AchievementService
	Trust       services.TrustService
	Abuse       services.AbuseService
	Progress    services.ProgressService
	Leaderboard services.LeaderboardService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	media, err := localmedia.NewStore(log)
	if err != nil {
		return Services{}, err
	}

	windows, err := redisclient.NewWindowStore(log)
	if err != nil {
		// Abuse windows and the leaderboard cache degrade to in-process
		// counters when redis is absent. Heuristics under-count across
		// replicas in that mode, which is acceptable for local runs.
		log.Warn("redis unavailable, using in-memory window store", "error", err)
		windows = redisclient.NewMemoryWindowStore()
	}

	avatarService, err := services.NewAvatarService(log, media)
	if err != nil {
		return Services{}, err
	}
	authService := services.NewAuthService(db, log, reposet.User, avatarService, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	userService := services.NewUserService(db, log, reposet.User, reposet.LibraryEntry, reposet.Follow)
	seriesService := services.NewSeriesService(db, log, reposet.Series)
	achievementService := services.NewAchievementService(db, log, reposet.User, reposet.Achievement, reposet.UserAchievement, reposet.LibraryEntry, reposet.Follow)
	trustService := services.NewTrustService(db, log, reposet.User, reposet.TrustViolation)
	abuseService := services.NewAbuseService(log, windows)
	progressService := services.NewProgressService(db, log, reposet.User, reposet.Series, reposet.LibraryEntry, reposet.Follow, achievementService, trustService, abuseService)
	leaderboardService := services.NewLeaderboardService(log, reposet.User, windows)

	return Services{
		Media:       media,
		Windows:     windows,
		Avatar:      avatarService,
		Auth:        authService,
		User:        userService,
		Series:      seriesService,
		Achievement: achievementService,
		Trust:       trustService,
		Abuse:       abuseService,
		Progress:    progressService,
		Leaderboard: leaderboardService,
	}, nil
}

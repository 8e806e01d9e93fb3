package app

import (
	httpH "github.com/yomikata/yomikata-backend/internal/http/handlers"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Series      *httpH.SeriesHandler
	Progress    *httpH.ProgressHandler
	Library     *httpH.LibraryHandler
	Follow      *httpH.FollowHandler
	Achievement *httpH.AchievementHandler
	Leaderboard *httpH.LeaderboardHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Auth:        httpH.NewAuthHandler(serviceset.Auth),
		User:        httpH.NewUserHandler(serviceset.User, serviceset.Trust, serviceset.Achievement),
		Series:      httpH.NewSeriesHandler(serviceset.Series),
		Progress:    httpH.NewProgressHandler(serviceset.Progress),
		Library:     httpH.NewLibraryHandler(serviceset.Progress),
		Follow:      httpH.NewFollowHandler(serviceset.Progress),
		Achievement: httpH.NewAchievementHandler(serviceset.Achievement),
		Leaderboard: httpH.NewLeaderboardHandler(serviceset.Leaderboard),
	}
}

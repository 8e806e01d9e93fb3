package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/yomikata/yomikata-backend/internal/http"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers, middleware Middleware, serviceset Services) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		MediaRoot:      serviceset.Media.Root(),
		AuthMiddleware: middleware.Auth,

		HealthHandler:      handlerset.Health,
		AuthHandler:        handlerset.Auth,
		LeaderboardHandler: handlerset.Leaderboard,
		AchievementHandler: handlerset.Achievement,
		SeriesHandler:      handlerset.Series,
		ProgressHandler:    handlerset.Progress,
		LibraryHandler:     handlerset.Library,
		FollowHandler:      handlerset.Follow,
		UserHandler:        handlerset.User,
	})
}

package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yomikata/yomikata-backend/internal/http/handlers"
	httpMW "github.com/yomikata/yomikata-backend/internal/http/middleware"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	MediaRoot      string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	AchievementHandler *httpH.AchievementHandler
	SeriesHandler      *httpH.SeriesHandler
	ProgressHandler    *httpH.ProgressHandler
	LibraryHandler     *httpH.LibraryHandler
	FollowHandler      *httpH.FollowHandler
	UserHandler        *httpH.UserHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.MediaRoot != "" {
		r.Static("/media", cfg.MediaRoot)
	}

	api := r.Group("/api")
	{
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.HealthCheck)
		}
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
		if cfg.LeaderboardHandler != nil {
			api.GET("/leaderboard", cfg.LeaderboardHandler.Get)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.SeriesHandler != nil {
			protected.POST("/series", cfg.SeriesHandler.Create)
			protected.GET("/series/:seriesID", cfg.SeriesHandler.Get)
		}

		if cfg.ProgressHandler != nil {
			protected.POST("/progress/read", cfg.ProgressHandler.RecordRead)
		}

		if cfg.LibraryHandler != nil {
			protected.POST("/library", cfg.LibraryHandler.Add)
			protected.PATCH("/library/:seriesID", cfg.LibraryHandler.UpdateStatus)
			protected.POST("/library/:seriesID/complete", cfg.LibraryHandler.Complete)
		}

		if cfg.FollowHandler != nil {
			protected.POST("/follows/:seriesID", cfg.FollowHandler.Follow)
			protected.DELETE("/follows/:seriesID", cfg.FollowHandler.Unfollow)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.GET("/me/trust", cfg.UserHandler.GetMyTrust)
			protected.GET("/me/achievements", cfg.UserHandler.GetMyAchievements)
		}

		if cfg.AchievementHandler != nil {
			protected.GET("/achievements", cfg.AchievementHandler.ListCatalog)
		}
	}

	return r
}

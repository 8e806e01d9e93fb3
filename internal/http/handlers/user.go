package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yomikata/yomikata-backend/internal/http/response"
	"github.com/yomikata/yomikata-backend/internal/requestdata"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type UserHandler struct {
	userService        services.UserService
	trustService       services.TrustService
	achievementService services.AchievementService
}

func NewUserHandler(userService services.UserService, trustService services.TrustService, achievementService services.AchievementService) *UserHandler {
	return &UserHandler{
		userService:        userService,
		trustService:       trustService,
		achievementService: achievementService,
	}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	profile, err := uh.userService.GetProfile(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, profile)
}

func (uh *UserHandler) GetMyTrust(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	status, err := uh.trustService.GetTrustStatus(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, status)
}

func (uh *UserHandler) GetMyAchievements(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	achievements, err := uh.achievementService.ListUserAchievements(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": achievements})
}

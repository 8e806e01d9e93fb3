package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yomikata/yomikata-backend/internal/http/response"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type AchievementHandler struct {
	achievementService services.AchievementService
}

func NewAchievementHandler(achievementService services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

func (ah *AchievementHandler) ListCatalog(c *gin.Context) {
	achievements, err := ah.achievementService.ListCatalog(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": achievements})
}

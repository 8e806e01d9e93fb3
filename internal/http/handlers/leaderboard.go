package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yomikata/yomikata-backend/internal/http/response"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (lh *LeaderboardHandler) Get(c *gin.Context) {
	category := c.DefaultQuery("category", "xp")
	period := c.Query("period")
	season := c.Query("season")
	limit, _ := strconv.Atoi(c.Query("limit"))

	board, err := lh.leaderboardService.GetLeaderboard(c.Request.Context(), services.LeaderboardQuery{
		Category: category,
		Period:   period,
		Season:   season,
		Limit:    limit,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, board)
}

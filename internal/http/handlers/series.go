package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yomikata/yomikata-backend/internal/http/response"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type SeriesHandler struct {
	seriesService services.SeriesService
}

func NewSeriesHandler(seriesService services.SeriesService) *SeriesHandler {
	return &SeriesHandler{seriesService: seriesService}
}

func (sh *SeriesHandler) Create(c *gin.Context) {
	var req struct {
		Title         string `json:"title" binding:"required"`
		TotalChapters int    `json:"total_chapters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	series, err := sh.seriesService.CreateSeries(c.Request.Context(), req.Title, req.TotalChapters)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, series)
}

func (sh *SeriesHandler) Get(c *gin.Context) {
	seriesID, err := uuid.Parse(c.Param("seriesID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_series_id", err)
		return
	}
	series, err := sh.seriesService.GetSeries(c.Request.Context(), seriesID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, series)
}

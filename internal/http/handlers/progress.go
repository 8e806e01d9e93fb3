package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yomikata/yomikata-backend/internal/http/response"
	"github.com/yomikata/yomikata-backend/internal/requestdata"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

func (ph *ProgressHandler) RecordRead(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req struct {
		SeriesID     uuid.UUID `json:"series_id" binding:"required"`
		Chapter      float64   `json:"chapter"`
		SecondsSpent int       `json:"seconds_spent"`
		PageCount    int       `json:"page_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := ph.progressService.RecordChapterRead(c.Request.Context(), rd.UserID, services.ChapterReadInput{
		SeriesID:     req.SeriesID,
		Chapter:      req.Chapter,
		SecondsSpent: req.SecondsSpent,
		PageCount:    req.PageCount,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yomikata/yomikata-backend/internal/http/response"
	"github.com/yomikata/yomikata-backend/internal/requestdata"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type LibraryHandler struct {
	progressService services.ProgressService
}

func NewLibraryHandler(progressService services.ProgressService) *LibraryHandler {
	return &LibraryHandler{progressService: progressService}
}

func (lh *LibraryHandler) Add(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req struct {
		SeriesID uuid.UUID `json:"series_id" binding:"required"`
		Status   string    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := lh.progressService.AddToLibrary(c.Request.Context(), rd.UserID, req.SeriesID, req.Status)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, result)
}

func (lh *LibraryHandler) UpdateStatus(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	seriesID, err := uuid.Parse(c.Param("seriesID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_series_id", err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := lh.progressService.UpdateStatus(c.Request.Context(), rd.UserID, seriesID, req.Status)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (lh *LibraryHandler) Complete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	seriesID, err := uuid.Parse(c.Param("seriesID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_series_id", err)
		return
	}

	result, err := lh.progressService.CompleteSeries(c.Request.Context(), rd.UserID, seriesID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

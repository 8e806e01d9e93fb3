package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yomikata/yomikata-backend/internal/http/response"
	"github.com/yomikata/yomikata-backend/internal/requestdata"
	"github.com/yomikata/yomikata-backend/internal/services"
)

type FollowHandler struct {
	progressService services.ProgressService
}

func NewFollowHandler(progressService services.ProgressService) *FollowHandler {
	return &FollowHandler{progressService: progressService}
}

func (fh *FollowHandler) Follow(c *gin.Context) {
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

	result, err := fh.progressService.FollowSeries(c.Request.Context(), rd.UserID, seriesID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, result)
}

func (fh *FollowHandler) Unfollow(c *gin.Context) {
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

	if err := fh.progressService.UnfollowSeries(c.Request.Context(), rd.UserID, seriesID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

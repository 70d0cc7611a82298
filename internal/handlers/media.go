package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
)

type MediaHandler struct {
	log          *logger.Logger
	mediaService services.MediaService
}

func NewMediaHandler(log *logger.Logger, mediaService services.MediaService) *MediaHandler {
	return &MediaHandler{
		log:          log.With("handler", "MediaHandler"),
		mediaService: mediaService,
	}
}

// GET /api/media
func (h *MediaHandler) List(c *gin.Context) {
	assets, err := h.mediaService.ListAssets(c.Request.Context(), currentUser(c).ID, c.Query("asset_type"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, assets)
}

// GET /api/media/:id
func (h *MediaHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	asset, err := h.mediaService.GetAsset(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, asset)
}

// DELETE /api/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.mediaService.DeleteAsset(c.Request.Context(), currentUser(c).ID, id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

// GET /api/uploads/storage
func (h *MediaHandler) ListStoredFiles(c *gin.Context) {
	files, err := h.mediaService.ListStoredFiles(c.Request.Context(), currentUser(c).ID, c.Query("asset_type"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"files": files})
}

// DELETE /api/uploads/storage
func (h *MediaHandler) BulkDelete(c *gin.Context) {
	var req struct {
		Paths []string `json:"paths"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.mediaService.BulkDeletePaths(c.Request.Context(), currentUser(c).ID, req.Paths)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type MeditationHandler struct {
	log               *logger.Logger
	meditationService services.MeditationService
}

func NewMeditationHandler(log *logger.Logger, meditationService services.MeditationService) *MeditationHandler {
	return &MeditationHandler{
		log:               log.With("handler", "MeditationHandler"),
		meditationService: meditationService,
	}
}

type meditationRequest struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Script          string      `json:"script"`
	DurationSeconds int         `json:"duration_seconds"`
	AudioAssetIDs   []uuid.UUID `json:"audio_asset_ids"`
	MediaAssetIDs   []uuid.UUID `json:"media_asset_ids"`
}

// POST /api/meditation-sessions
func (h *MeditationHandler) Create(c *gin.Context) {
	var req meditationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	session := &types.MeditationSession{
		Name:            req.Name,
		Description:     req.Description,
		Script:          req.Script,
		DurationSeconds: req.DurationSeconds,
	}
	if err := h.meditationService.Create(c.Request.Context(), currentUser(c), session, req.AudioAssetIDs, req.MediaAssetIDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, session)
}

// GET /api/meditation-sessions
func (h *MeditationHandler) List(c *gin.Context) {
	sessions, err := h.meditationService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sessions)
}

// GET /api/meditation-sessions/:id
func (h *MeditationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.meditationService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, session)
}

// PATCH /api/meditation-sessions/:id
func (h *MeditationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name            *string      `json:"name"`
		Description     *string      `json:"description"`
		Script          *string      `json:"script"`
		DurationSeconds *int         `json:"duration_seconds"`
		IsActive        *bool        `json:"is_active"`
		AudioAssetIDs   *[]uuid.UUID `json:"audio_asset_ids"`
		MediaAssetIDs   *[]uuid.UUID `json:"media_asset_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Script != nil {
		updates["script"] = *req.Script
	}
	if req.DurationSeconds != nil {
		updates["duration_seconds"] = *req.DurationSeconds
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	session, err := h.meditationService.Update(c.Request.Context(), currentUser(c), id, updates,
		derefIDs(req.AudioAssetIDs), derefIDs(req.MediaAssetIDs))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, session)
}

// DELETE /api/meditation-sessions/:id
func (h *MeditationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.meditationService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

// derefIDs maps an absent list to nil (leave unchanged) and an explicit empty
// list to a non-nil empty slice (clear the association).
func derefIDs(ids *[]uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	if *ids == nil {
		return []uuid.UUID{}
	}
	return *ids
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type BreathingHandler struct {
	log              *logger.Logger
	breathingService services.BreathingService
}

func NewBreathingHandler(log *logger.Logger, breathingService services.BreathingService) *BreathingHandler {
	return &BreathingHandler{
		log:              log.With("handler", "BreathingHandler"),
		breathingService: breathingService,
	}
}

type breathingRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Pattern       json.RawMessage `json:"pattern"`
	TimerSeconds  int             `json:"timer_seconds"`
	MediaAssetIDs []uuid.UUID     `json:"media_asset_ids"`
}

// POST /api/breathing-exercises
func (h *BreathingHandler) Create(c *gin.Context) {
	var req breathingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	be := &types.BreathingExercise{
		Name:         req.Name,
		Description:  req.Description,
		Pattern:      datatypes.JSON(req.Pattern),
		TimerSeconds: req.TimerSeconds,
	}
	if err := h.breathingService.Create(c.Request.Context(), currentUser(c), be, req.MediaAssetIDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, be)
}

// GET /api/breathing-exercises
func (h *BreathingHandler) List(c *gin.Context) {
	exercises, err := h.breathingService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, exercises)
}

// GET /api/breathing-exercises/:id
func (h *BreathingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	be, err := h.breathingService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, be)
}

// PATCH /api/breathing-exercises/:id
func (h *BreathingHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name          *string          `json:"name"`
		Description   *string          `json:"description"`
		Pattern       *json.RawMessage `json:"pattern"`
		TimerSeconds  *int             `json:"timer_seconds"`
		IsActive      *bool            `json:"is_active"`
		MediaAssetIDs *[]uuid.UUID     `json:"media_asset_ids"`
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
	if req.Pattern != nil {
		updates["pattern"] = *req.Pattern
	}
	if req.TimerSeconds != nil {
		updates["timer_seconds"] = *req.TimerSeconds
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	be, err := h.breathingService.Update(c.Request.Context(), currentUser(c), id, updates, derefIDs(req.MediaAssetIDs))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, be)
}

// DELETE /api/breathing-exercises/:id
func (h *BreathingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.breathingService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

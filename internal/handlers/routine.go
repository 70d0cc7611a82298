package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type RoutineHandler struct {
	log            *logger.Logger
	routineService services.RoutineService
}

func NewRoutineHandler(log *logger.Logger, routineService services.RoutineService) *RoutineHandler {
	return &RoutineHandler{
		log:            log.With("handler", "RoutineHandler"),
		routineService: routineService,
	}
}

// POST /api/routines
func (h *RoutineHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	routine := &types.Routine{Name: req.Name, Description: req.Description}
	if err := h.routineService.Create(c.Request.Context(), currentUser(c), routine); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, routine)
}

// GET /api/routines
func (h *RoutineHandler) List(c *gin.Context) {
	routines, err := h.routineService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, routines)
}

// GET /api/routines/:id
func (h *RoutineHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	routine, err := h.routineService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, routine)
}

// PATCH /api/routines/:id
func (h *RoutineHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindUpdates(c, "name", "description", "is_active")
	if !ok {
		return
	}
	routine, err := h.routineService.Update(c.Request.Context(), currentUser(c), id, updates)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, routine)
}

// DELETE /api/routines/:id
func (h *RoutineHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.routineService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

// GET /api/routines/:id/exercises
func (h *RoutineHandler) ListExercises(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exercises, err := h.routineService.ListExercises(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, exercises)
}

type exerciseRequest struct {
	Name          string      `json:"name"`
	Instructions  string      `json:"instructions"`
	SortOrder     int         `json:"sort_order"`
	MediaAssetIDs []uuid.UUID `json:"media_asset_ids"`
}

// POST /api/routines/:id/exercises
func (h *RoutineHandler) AddExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req exerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	exercise := &types.Exercise{
		Name:         req.Name,
		Instructions: req.Instructions,
		SortOrder:    req.SortOrder,
	}
	if err := h.routineService.AddExercise(c.Request.Context(), currentUser(c), id, exercise, req.MediaAssetIDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, exercise)
}

// PATCH /api/exercises/:id
func (h *RoutineHandler) UpdateExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name          *string      `json:"name"`
		Instructions  *string      `json:"instructions"`
		SortOrder     *int         `json:"sort_order"`
		MediaAssetIDs *[]uuid.UUID `json:"media_asset_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Instructions != nil {
		updates["instructions"] = *req.Instructions
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	exercise, err := h.routineService.UpdateExercise(c.Request.Context(), currentUser(c), id, updates, derefIDs(req.MediaAssetIDs))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, exercise)
}

// DELETE /api/exercises/:id
func (h *RoutineHandler) DeleteExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.routineService.DeleteExercise(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("malformed %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindUpdates decodes a partial-update body, keeping only recognized fields.
func bindUpdates(c *gin.Context, allowed ...string) (map[string]interface{}, bool) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return nil, false
	}
	updates := map[string]interface{}{}
	for _, field := range allowed {
		if val, ok := body[field]; ok {
			updates[field] = val
		}
	}
	return updates, true
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type CombinedRoutineHandler struct {
	log             *logger.Logger
	combinedService services.CombinedRoutineService
}

func NewCombinedRoutineHandler(log *logger.Logger, combinedService services.CombinedRoutineService) *CombinedRoutineHandler {
	return &CombinedRoutineHandler{
		log:             log.With("handler", "CombinedRoutineHandler"),
		combinedService: combinedService,
	}
}

type combinedRequest struct {
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	TransitionNotes      string      `json:"transition_notes"`
	RoutineIDs           []uuid.UUID `json:"routine_ids"`
	BreathingExerciseIDs []uuid.UUID `json:"breathing_exercise_ids"`
	MeditationSessionIDs []uuid.UUID `json:"meditation_session_ids"`
}

// POST /api/combined-routines
func (h *CombinedRoutineHandler) Create(c *gin.Context) {
	var req combinedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	cr := &types.CombinedRoutine{
		Name:            req.Name,
		Description:     req.Description,
		TransitionNotes: req.TransitionNotes,
	}
	parts := services.CombinedRoutineParts{
		RoutineIDs:           req.RoutineIDs,
		BreathingExerciseIDs: req.BreathingExerciseIDs,
		MeditationSessionIDs: req.MeditationSessionIDs,
	}
	if err := h.combinedService.Create(c.Request.Context(), currentUser(c), cr, parts); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, cr)
}

// GET /api/combined-routines
func (h *CombinedRoutineHandler) List(c *gin.Context) {
	routines, err := h.combinedService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, routines)
}

// GET /api/combined-routines/:id
func (h *CombinedRoutineHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cr, err := h.combinedService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, cr)
}

// PATCH /api/combined-routines/:id
func (h *CombinedRoutineHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name                 *string      `json:"name"`
		Description          *string      `json:"description"`
		TransitionNotes      *string      `json:"transition_notes"`
		IsActive             *bool        `json:"is_active"`
		RoutineIDs           *[]uuid.UUID `json:"routine_ids"`
		BreathingExerciseIDs *[]uuid.UUID `json:"breathing_exercise_ids"`
		MeditationSessionIDs *[]uuid.UUID `json:"meditation_session_ids"`
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
	if req.TransitionNotes != nil {
		updates["transition_notes"] = *req.TransitionNotes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	var parts *services.CombinedRoutineParts
	if req.RoutineIDs != nil || req.BreathingExerciseIDs != nil || req.MeditationSessionIDs != nil {
		parts = &services.CombinedRoutineParts{
			RoutineIDs:           derefIDs(req.RoutineIDs),
			BreathingExerciseIDs: derefIDs(req.BreathingExerciseIDs),
			MeditationSessionIDs: derefIDs(req.MeditationSessionIDs),
		}
	}
	cr, err := h.combinedService.Update(c.Request.Context(), currentUser(c), id, updates, parts)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, cr)
}

// DELETE /api/combined-routines/:id
func (h *CombinedRoutineHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.combinedService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

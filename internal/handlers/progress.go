package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type ProgressHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:             log.With("handler", "ProgressHandler"),
		progressService: progressService,
	}
}

type progressRequest struct {
	ExerciseID          *uuid.UUID `json:"exercise_id"`
	BreathingExerciseID *uuid.UUID `json:"breathing_exercise_id"`
	MeditationSessionID *uuid.UUID `json:"meditation_session_id"`
	CombinedRoutineID   *uuid.UUID `json:"combined_routine_id"`
	CompletedAt         *time.Time `json:"completed_at"`
	DurationSeconds     int        `json:"duration_seconds"`
	DifficultyRating    *int       `json:"difficulty_rating"`
	Notes               string     `json:"notes"`
	Feedback            string     `json:"feedback"`
}

// POST /api/progress
func (h *ProgressHandler) Record(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	record := &types.ExerciseProgress{
		ExerciseID:          req.ExerciseID,
		BreathingExerciseID: req.BreathingExerciseID,
		MeditationSessionID: req.MeditationSessionID,
		CombinedRoutineID:   req.CombinedRoutineID,
		DurationSeconds:     req.DurationSeconds,
		DifficultyRating:    req.DifficultyRating,
		Notes:               req.Notes,
		Feedback:            req.Feedback,
	}
	if req.CompletedAt != nil {
		record.CompletedAt = *req.CompletedAt
	}
	result, err := h.progressService.Record(c.Request.Context(), currentUser(c), record)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, result)
}

// GET /api/progress
func (h *ProgressHandler) List(c *gin.Context) {
	records, err := h.progressService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, records)
}

// PATCH /api/progress/:id
func (h *ProgressHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindUpdates(c, "duration_seconds", "difficulty_rating", "notes", "feedback")
	if !ok {
		return
	}
	record, err := h.progressService.Update(c.Request.Context(), currentUser(c), id, updates)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, record)
}

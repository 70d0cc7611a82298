package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
)

type RelationshipHandler struct {
	log                 *logger.Logger
	relationshipService services.RelationshipService
}

func NewRelationshipHandler(log *logger.Logger, relationshipService services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{
		log:                 log.With("handler", "RelationshipHandler"),
		relationshipService: relationshipService,
	}
}

// POST /api/relationships
func (h *RelationshipHandler) Create(c *gin.Context) {
	var req struct {
		ClientID uuid.UUID `json:"client_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rel, err := h.relationshipService.Create(c.Request.Context(), currentUser(c), req.ClientID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, rel)
}

// GET /api/relationships
func (h *RelationshipHandler) List(c *gin.Context) {
	rels, err := h.relationshipService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rels)
}

// GET /api/relationships/:id
func (h *RelationshipHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rel, err := h.relationshipService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rel)
}

// DELETE /api/relationships/:id
func (h *RelationshipHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.relationshipService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "deleted"})
}

// POST /api/relationships/:id/routines
func (h *RelationshipHandler) AssignRoutine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		RoutineID uuid.UUID `json:"routine_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.relationshipService.AssignRoutine(c.Request.Context(), currentUser(c), id, req.RoutineID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "assigned"})
}

// DELETE /api/relationships/:id/routines/:routine_id
func (h *RelationshipHandler) RemoveRoutine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	routineID, ok := pathID(c, "routine_id")
	if !ok {
		return
	}
	if err := h.relationshipService.RemoveRoutine(c.Request.Context(), currentUser(c), id, routineID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "removed"})
}

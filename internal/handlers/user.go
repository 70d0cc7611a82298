package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	RespondOK(c, currentUser(c))
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListVisible(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, users)
}

// POST /api/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("malformed user id"))
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, err := h.userService.UpdateRole(c.Request.Context(), currentUser(c), id, req.Role)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

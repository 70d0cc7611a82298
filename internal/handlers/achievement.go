package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type AchievementHandler struct {
	log                *logger.Logger
	achievementService services.AchievementService
}

func NewAchievementHandler(log *logger.Logger, achievementService services.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		log:                log.With("handler", "AchievementHandler"),
		achievementService: achievementService,
	}
}

// GET /api/achievements
func (h *AchievementHandler) List(c *gin.Context) {
	definitions, err := h.achievementService.ListDefinitions(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, definitions)
}

// POST /api/achievements
func (h *AchievementHandler) Create(c *gin.Context) {
	caller := currentUser(c)
	if !caller.IsInstructor() {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("instructor role required"))
		return
	}
	var req struct {
		Name            string          `json:"name"`
		Description     string          `json:"description"`
		AchievementType string          `json:"achievement_type"`
		Criteria        json.RawMessage `json:"criteria"`
		IconURL         string          `json:"icon_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	achievement := &types.Achievement{
		Name:            req.Name,
		Description:     req.Description,
		AchievementType: types.AchievementType(req.AchievementType),
		IconURL:         req.IconURL,
		Criteria:        datatypes.JSON(req.Criteria),
		IsActive:        true,
	}
	if err := h.achievementService.CreateDefinition(c.Request.Context(), achievement); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, achievement)
}

// GET /api/achievements/earned
func (h *AchievementHandler) ListEarned(c *gin.Context) {
	earned, err := h.achievementService.ListEarned(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, earned)
}

// POST /api/achievements/check
func (h *AchievementHandler) Check(c *gin.Context) {
	result, err := h.achievementService.AwardForClient(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

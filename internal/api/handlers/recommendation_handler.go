package handlers

import (
	"strconv"
	"strings"

	"tech-advisor/internal/dto"
	"tech-advisor/internal/models"
	"tech-advisor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RecommendationHandler struct {
	recService *service.RecommendationService
	logger     *zap.Logger
}

func NewRecommendationHandler(recService *service.RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recService: recService,
		logger:     logger,
	}
}

// GetRecommendations godoc
// @Summary Recommend products
// @Description Match preferences against the rule set and rank the candidate products
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body dto.RecommendationRequest true "User preferences"
// @Success 200 {object} dto.RecommendationResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/recommendations [post]
func (h *RecommendationHandler) GetRecommendations(c *fiber.Ctx) error {
	var req dto.RecommendationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	resp, err := h.recService.GetRecommendations(c.UserContext(), preferencesFromRequest(&req), req.Limit)
	if err != nil {
		h.logger.Error("Failed to get recommendations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get recommendations",
		})
	}

	return c.JSON(resp)
}

func preferencesFromRequest(req *dto.RecommendationRequest) models.Preferences {
	prefs := models.Preferences{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			prefs[key] = value
		}
	}

	set(models.PrefCategory, req.Category)
	if req.CategoryID > 0 {
		prefs[models.PrefCategoryID] = strconv.FormatInt(req.CategoryID, 10)
	}
	if req.Budget > 0 {
		prefs[models.PrefBudget] = strconv.FormatFloat(req.Budget, 'f', -1, 64)
	}
	set(models.PrefUsageType, req.UsageType)
	set(models.PrefPreferredBrand, req.PreferredBrand)
	set(models.PrefNotes, req.AdditionalNotes)
	return prefs
}

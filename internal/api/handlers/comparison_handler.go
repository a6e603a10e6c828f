package handlers

import (
	"errors"
	"strconv"
	"strings"

	"tech-advisor/internal/dto"
	"tech-advisor/internal/models"
	"tech-advisor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ComparisonHandler struct {
	compService *service.ComparisonService
	logger      *zap.Logger
}

func NewComparisonHandler(compService *service.ComparisonService, logger *zap.Logger) *ComparisonHandler {
	return &ComparisonHandler{
		compService: compService,
		logger:      logger,
	}
}

// CompareProducts godoc
// @Summary Compare two products
// @Description Side-by-side pros, cons, per-dimension winners and an overall verdict
// @Tags comparison
// @Produce json
// @Param p1 query int true "First product ID"
// @Param p2 query int true "Second product ID"
// @Param budget query number false "Budget"
// @Param usage_type query string false "Usage type"
// @Param preferred_brand query string false "Preferred brand"
// @Success 200 {object} dto.ComparisonResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/compare [get]
func (h *ComparisonHandler) CompareProducts(c *fiber.Ctx) error {
	var req dto.ComparisonRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	prefs := models.Preferences{}
	if req.Budget > 0 {
		prefs[models.PrefBudget] = strconv.FormatFloat(req.Budget, 'f', -1, 64)
	}
	if usage := strings.TrimSpace(req.UsageType); usage != "" {
		prefs[models.PrefUsageType] = usage
	}
	if brand := strings.TrimSpace(req.PreferredBrand); brand != "" {
		prefs[models.PrefPreferredBrand] = brand
	}

	resp, err := h.compService.Compare(c.UserContext(), req.Product1, req.Product2, prefs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidComparison):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Select two different products to compare",
			})
		case errors.Is(err, service.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("Failed to compare products", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compare products",
		})
	}

	return c.JSON(resp)
}

package handlers

import (
	"context"
	"strings"

	"tech-advisor/internal/dto"
	"tech-advisor/internal/inference"
	"tech-advisor/internal/models"
	"tech-advisor/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RuleCacheInvalidator is satisfied by *repository.CachedRuleRepository.
type RuleCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type AdminHandler struct {
	engine *inference.Engine
	// cache is nil when rule caching is disabled.
	cache  RuleCacheInvalidator
	logger *zap.Logger
}

func NewAdminHandler(engine *inference.Engine, cache RuleCacheInvalidator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		engine: engine,
		cache:  cache,
		logger: logger,
	}
}

// EvaluateRules godoc
// @Summary Dry-run the rule engine
// @Description Evaluates every candidate rule against the supplied facts and reports each condition
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.EvaluateRulesRequest true "Facts"
// @Security Bearer
// @Success 200 {object} dto.EvaluateRulesResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/rules/evaluate [post]
func (h *AdminHandler) EvaluateRules(c *fiber.Ctx) error {
	var req dto.EvaluateRulesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	facts := make(models.Preferences, len(req.Facts))
	for k, v := range req.Facts {
		if k = strings.TrimSpace(k); k != "" {
			facts[k] = strings.TrimSpace(v)
		}
	}

	traces, err := h.engine.Explain(c.UserContext(), facts)
	if err != nil {
		h.logger.Error("Failed to evaluate rules", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to evaluate rules",
		})
	}

	resp := dto.EvaluateRulesResponse{Rules: make([]dto.RuleTraceResponse, 0, len(traces))}
	for _, t := range traces {
		if t.Fired {
			resp.FiredRules++
		}
		resp.Rules = append(resp.Rules, toRuleTraceResponse(t))
	}

	h.logger.Info("Rules evaluated",
		zap.String("subject", subjectOf(c)),
		zap.Int("candidates", len(traces)),
		zap.Int("fired_rules", resp.FiredRules),
	)
	return c.JSON(resp)
}

// InvalidateRuleCache godoc
// @Summary Drop cached rule sets
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/admin/rules/cache [delete]
func (h *AdminHandler) InvalidateRuleCache(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.JSON(fiber.Map{
			"invalidated": false,
			"message":     "Rule cache is disabled",
		})
	}

	if err := h.cache.Invalidate(c.UserContext()); err != nil {
		h.logger.Error("Failed to invalidate rule cache", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to invalidate rule cache",
		})
	}

	h.logger.Info("Rule cache invalidated", zap.String("subject", subjectOf(c)))
	return c.JSON(fiber.Map{
		"invalidated": true,
		"message":     "Rule cache invalidated",
	})
}

func toRuleTraceResponse(t inference.RuleTrace) dto.RuleTraceResponse {
	out := dto.RuleTraceResponse{
		ID:          t.Rule.ID,
		Name:        t.Rule.Name,
		Description: t.Rule.Description,
		CategoryID:  t.Rule.CategoryID,
		Priority:    t.Rule.Priority,
		Fired:       t.Fired,
		Conditions:  make([]dto.ConditionTraceResponse, 0, len(t.Conditions)),
	}
	for _, ct := range t.Conditions {
		out.Conditions = append(out.Conditions, dto.ConditionTraceResponse{
			Type:      ct.Condition.Type,
			Key:       ct.Condition.Key,
			Operator:  ct.Condition.Operator.String(),
			Expected:  ct.Condition.Value,
			Actual:    ct.Fact,
			HasFact:   ct.HasFact,
			Satisfied: ct.Satisfied,
		})
	}
	return out
}

func subjectOf(c *fiber.Ctx) string {
	subject, _ := c.Locals(middleware.LocalsSubject).(string)
	return subject
}

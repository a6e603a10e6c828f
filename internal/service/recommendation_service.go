package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"tech-advisor/internal/dto"
	"tech-advisor/internal/models"
	"tech-advisor/pkg/metrics"

	"go.uber.org/zap"
)

const (
	msgNoMatches  = "No matching products found. Try adjusting your criteria."
	maxRulePoints = 2
)

type RecommendationService struct {
	engine       RuleInferrer
	catalog      ProductCatalog
	resolver     NameResolver
	scorer       *Scorer
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

func NewRecommendationService(
	engine RuleInferrer,
	catalog ProductCatalog,
	resolver NameResolver,
	scorer *Scorer,
	defaultLimit int,
	maxLimit int,
	logger *zap.Logger,
) *RecommendationService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &RecommendationService{
		engine:       engine,
		catalog:      catalog,
		resolver:     resolver,
		scorer:       scorer,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// GetRecommendations runs the rule engine over the preferences, fetches the
// candidate products and returns them ranked by score. limit <= 0 selects the
// default limit; larger values are capped.
func (s *RecommendationService) GetRecommendations(
	ctx context.Context,
	prefs models.Preferences,
	limit int,
) (*dto.RecommendationResponse, error) {
	start := time.Now()
	facts := prefs.Clone()

	categoryID, hasCategory, err := s.resolveCategory(ctx, facts)
	if err != nil {
		metrics.RecordRecommendation("error", 0, time.Since(start))
		return nil, err
	}
	if hasCategory {
		facts[models.PrefCategoryID] = strconv.FormatInt(categoryID, 10)
	}

	rules, err := s.engine.Infer(ctx, facts)
	if err != nil {
		metrics.RecordRecommendation("error", 0, time.Since(start))
		return nil, fmt.Errorf("failed to run inference: %w", err)
	}

	filter, err := s.buildFilter(ctx, facts, rules, categoryID, hasCategory)
	if err != nil {
		metrics.RecordRecommendation("error", len(rules), time.Since(start))
		return nil, err
	}

	products, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		metrics.RecordRecommendation("error", len(rules), time.Since(start))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if len(rules) == 0 && len(products) == 0 {
		metrics.RecordRecommendation("no_matches", 0, time.Since(start))
		return &dto.RecommendationResponse{
			Products:     []dto.RecommendedProduct{},
			TotalMatches: 0,
			FiredRules:   0,
			Message:      msgNoMatches,
		}, nil
	}

	recommended := make([]dto.RecommendedProduct, 0, len(products))
	for i := range products {
		recommended = append(recommended, s.recommend(&products[i], facts, rules))
	}

	sort.SliceStable(recommended, func(i, j int) bool {
		return recommended[i].Confidence > recommended[j].Confidence
	})

	total := len(recommended)
	if n := s.normalizeLimit(limit); len(recommended) > n {
		recommended = recommended[:n]
	}

	outcome := "matched"
	message := fmt.Sprintf("Found %d products matching your preferences", total)
	if total == 0 {
		outcome = "no_products"
		message = fmt.Sprintf("%d rules matched your preferences, but no products fit your filters. Try raising your budget or choosing another brand.", len(rules))
	}

	metrics.RecordRecommendation(outcome, len(rules), time.Since(start))
	s.logger.Info("Recommendations generated",
		zap.Int("fired_rules", len(rules)),
		zap.Int("candidates", total),
		zap.Int("returned", len(recommended)),
		zap.Duration("duration", time.Since(start)),
	)

	return &dto.RecommendationResponse{
		Products:     recommended,
		TotalMatches: total,
		FiredRules:   len(rules),
		Message:      message,
	}, nil
}

func (s *RecommendationService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// resolveCategory finds the explicit category of the request. A numeric
// category_id wins; otherwise the category name (or a non-numeric
// category_id) is resolved by name. Unknown names mean no category.
func (s *RecommendationService) resolveCategory(ctx context.Context, facts models.Preferences) (int64, bool, error) {
	if id, ok := facts.CategoryID(); ok {
		return id, true, nil
	}

	name := facts.Category()
	if name == "" {
		if raw, ok := facts.Get(models.PrefCategoryID); ok {
			if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
				name = raw
			}
		}
	}
	if name == "" {
		return 0, false, nil
	}

	id, ok, err := s.resolver.ResolveCategoryID(ctx, name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve category: %w", err)
	}
	if !ok {
		s.logger.Debug("Category not resolvable, skipping filter", zap.String("category", name))
		return 0, false, nil
	}
	return id, true, nil
}

// buildFilter applies the category precedence: an explicit category always
// constrains; rule categories apply only when there is none.
func (s *RecommendationService) buildFilter(
	ctx context.Context,
	facts models.Preferences,
	rules []models.Rule,
	categoryID int64,
	hasCategory bool,
) (models.ProductFilter, error) {
	filter := models.ProductFilter{ActiveOnly: true}

	if hasCategory {
		filter.CategoryIDs = []int64{categoryID}
	} else {
		filter.CategoryIDs = ruleCategories(rules)
	}

	if budget, ok := facts.Budget(); ok {
		filter.MaxPrice = &budget
	} else if raw, present := facts.Get(models.PrefBudget); present {
		s.logger.Debug("Ignoring unusable budget", zap.String("budget", raw))
	}

	if brand := facts.PreferredBrand(); brand != "" {
		id, ok, err := s.resolver.ResolveBrandID(ctx, brand)
		if err != nil {
			return filter, fmt.Errorf("failed to resolve brand: %w", err)
		}
		if ok {
			filter.BrandID = &id
		} else {
			s.logger.Debug("Brand not resolvable, skipping filter", zap.String("brand", brand))
		}
	}

	return filter, nil
}

// ruleCategories returns the distinct categories of the rules in order.
func ruleCategories(rules []models.Rule) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, r := range rules {
		if r.CategoryID == nil {
			continue
		}
		if _, ok := seen[*r.CategoryID]; ok {
			continue
		}
		seen[*r.CategoryID] = struct{}{}
		ids = append(ids, *r.CategoryID)
	}
	return ids
}

func (s *RecommendationService) recommend(p *models.Product, facts models.Preferences, rules []models.Rule) dto.RecommendedProduct {
	var (
		points      []string
		matchedRule *string
	)

	for _, r := range rules {
		if !r.AppliesTo(p.CategoryID) {
			continue
		}
		if matchedRule == nil {
			name := sanitizeUTF8(r.Name)
			matchedRule = &name
		}
		if len(points) < maxRulePoints {
			points = append(points, sanitizeUTF8(r.Explanation()))
		}
	}

	if fit := budgetFit(p.Price, facts); fit != "" {
		points = append(points, fit)
	}
	points = append(points, budgetReasoning(p.Price))
	for _, reason := range s.scorer.UsageFit(p, facts.UsageType()) {
		points = append(points, sanitizeUTF8(reason))
	}
	if features := keyFeatures(p); features != "" {
		points = append(points, sanitizeUTF8(features))
	}

	return dto.RecommendedProduct{
		ID:              p.ID,
		Name:            sanitizeUTF8(p.Name),
		Brand:           p.BrandName,
		Category:        p.CategoryName,
		Price:           p.Price,
		Description:     sanitizeUTF8(p.Description),
		ImageURL:        p.ImageURL,
		Specifications:  ToSpecResponses(p.Specifications),
		Confidence:      s.scorer.OverallScore(p, facts),
		Reasoning:       joinReasoning(points),
		ReasoningPoints: points,
		MatchedRule:     matchedRule,
	}
}

// ToSpecResponses converts specifications for output, replacing invalid UTF-8.
func ToSpecResponses(specs []models.Specification) []dto.SpecificationResponse {
	out := make([]dto.SpecificationResponse, 0, len(specs))
	for _, s := range specs {
		out = append(out, dto.SpecificationResponse{
			Key:   sanitizeUTF8(s.Key),
			Value: sanitizeUTF8(s.Value),
		})
	}
	return out
}

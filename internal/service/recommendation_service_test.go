package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tech-advisor/internal/models"
)

func newRecommendationService(inferrer RuleInferrer, catalog ProductCatalog) *RecommendationService {
	return NewRecommendationService(inferrer, catalog, newTestResolver(), NewScorer(DefaultTables()), 10, 50, zap.NewNop())
}

func activeRule(id int64, name, description string, priority int, category *int64) models.Rule {
	return models.Rule{ID: id, Name: name, Description: description, Priority: priority, CategoryID: category, IsActive: true}
}

func TestGetRecommendations_ExplicitCategoryExcludesOthers(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{
		laptop(1, "Gaming laptop", 480, spec("RAM", "32GB"), spec("Graphics", "NVIDIA RTX 4060")),
		phone(2, "Galaxy A55", 450, spec("RAM", "8GB")),
	}}
	inferrer := &fakeInferrer{}
	svc := newRecommendationService(inferrer, catalog)

	resp, err := svc.GetRecommendations(context.Background(), models.Preferences{
		models.PrefCategoryID: "smartphone",
		models.PrefBudget:     "500",
		models.PrefUsageType:  "general",
	}, 10)

	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Galaxy A55", resp.Products[0].Name)
	assert.Equal(t, 1, resp.TotalMatches)
	assert.Equal(t, "Found 1 products matching your preferences", resp.Message)

	require.Len(t, inferrer.inputs, 1)
	assert.Equal(t, "1", inferrer.inputs[0][models.PrefCategoryID], "resolved category is a fact for inference")
	assert.Equal(t, []int64{smartphoneID}, catalog.filters[0].CategoryIDs)
	require.NotNil(t, catalog.filters[0].MaxPrice)
	assert.Equal(t, 500.0, *catalog.filters[0].MaxPrice)
	assert.True(t, catalog.filters[0].ActiveOnly)
}

func TestGetRecommendations_NoRulesNoProducts(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{phone(1, "Galaxy S24", 799)}}
	svc := newRecommendationService(&fakeInferrer{}, catalog)

	resp, err := svc.GetRecommendations(context.Background(), models.Preferences{models.PrefBudget: "50"}, 10)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalMatches)
	assert.Equal(t, 0, resp.FiredRules)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)
	assert.Equal(t, "No matching products found. Try adjusting your criteria.", resp.Message)
}

func TestGetRecommendations_RulesButNoProductsIsDistinct(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{phone(1, "Galaxy S24", 799)}}
	inferrer := &fakeInferrer{rules: []models.Rule{activeRule(1, "Budget phones", "Affordable picks", 50, int64Ptr(smartphoneID))}}
	svc := newRecommendationService(inferrer, catalog)

	resp, err := svc.GetRecommendations(context.Background(), models.Preferences{models.PrefBudget: "50"}, 10)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalMatches)
	assert.Equal(t, 1, resp.FiredRules)
	assert.NotEmpty(t, resp.Message)
	assert.NotEqual(t, msgNoMatches, resp.Message)
}

func TestGetRecommendations_CategoryPrecedence(t *testing.T) {
	rules := []models.Rule{
		activeRule(1, "Gaming laptops", "", 90, int64Ptr(laptopID)),
		activeRule(2, "Generic", "", 10, nil),
		activeRule(3, "Laptop again", "", 5, int64Ptr(laptopID)),
	}

	t.Run("rule categories apply without an explicit category", func(t *testing.T) {
		catalog := &fakeCatalog{}
		svc := newRecommendationService(&fakeInferrer{rules: rules}, catalog)

		_, err := svc.GetRecommendations(context.Background(), models.Preferences{models.PrefUsageType: "gaming"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{laptopID}, catalog.filters[0].CategoryIDs)
	})

	t.Run("explicit category is never widened", func(t *testing.T) {
		catalog := &fakeCatalog{}
		svc := newRecommendationService(&fakeInferrer{rules: rules}, catalog)

		_, err := svc.GetRecommendations(context.Background(), models.Preferences{models.PrefCategory: "Smartphone"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{smartphoneID}, catalog.filters[0].CategoryIDs)
	})

	t.Run("unknown category is skipped", func(t *testing.T) {
		catalog := &fakeCatalog{}
		inferrer := &fakeInferrer{}
		svc := newRecommendationService(inferrer, catalog)

		_, err := svc.GetRecommendations(context.Background(), models.Preferences{models.PrefCategory: "Smartwatch"}, 0)
		require.NoError(t, err)
		assert.Empty(t, catalog.filters[0].CategoryIDs)
		_, has := inferrer.inputs[0][models.PrefCategoryID]
		assert.False(t, has)
	})
}

func TestGetRecommendations_BrandFilter(t *testing.T) {
	tests := []struct {
		name      string
		brand     string
		wantBrand *int64
	}{
		{"known brand", "Apple", int64Ptr(appleID)},
		{"case insensitive", "SAMSUNG", int64Ptr(samsungID)},
		{"unknown brand skipped", "Nokia", nil},
		{"any means no preference", "Any", nil},
		{"empty", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			catalog := &fakeCatalog{}
			svc := newRecommendationService(&fakeInferrer{}, catalog)

			_, err := svc.GetRecommendations(context.Background(), models.Preferences{
				models.PrefCategory:       "laptop",
				models.PrefPreferredBrand: tc.brand,
			}, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBrand, catalog.filters[0].BrandID)
		})
	}
}

func TestGetRecommendations_RankingAndLimit(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{
		phone(1, "Basic", 150),
		phone(2, "Mid", 300, spec("RAM", "8GB")),
		phone(3, "Flagship", 390, spec("RAM", "12GB"), spec("Storage", "256GB"), spec("Display", "AMOLED 120Hz")),
		phone(4, "Also basic", 150),
	}}
	svc := newRecommendationService(&fakeInferrer{}, catalog)

	resp, err := svc.GetRecommendations(context.Background(), models.Preferences{
		models.PrefCategory: "smartphone",
		models.PrefBudget:   "500",
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, 4, resp.TotalMatches)
	require.Len(t, resp.Products, 3)
	assert.Equal(t, "Flagship", resp.Products[0].Name)
	assert.Equal(t, "Mid", resp.Products[1].Name)
	assert.Equal(t, "Basic", resp.Products[2].Name, "ties keep catalog order")

	for i := 1; i < len(resp.Products); i++ {
		assert.GreaterOrEqual(t, resp.Products[i-1].Confidence, resp.Products[i].Confidence)
	}
}

func TestGetRecommendations_LimitNormalization(t *testing.T) {
	products := make([]models.Product, 0, 60)
	for i := int64(1); i <= 60; i++ {
		products = append(products, phone(i, "Phone", 100))
	}
	svc := NewRecommendationService(&fakeInferrer{}, &fakeCatalog{products: products}, newTestResolver(), NewScorer(DefaultTables()), 10, 50, zap.NewNop())

	resp, err := svc.GetRecommendations(context.Background(), models.Preferences{}, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Products, 10)
	assert.Equal(t, 60, resp.TotalMatches)

	resp, err = svc.GetRecommendations(context.Background(), models.Preferences{}, 500)
	require.NoError(t, err)
	assert.Len(t, resp.Products, 50)
}

func TestGetRecommendations_Reasoning(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{
		laptop(1, "Legion 5", 1200,
			spec("Processor", "AMD Ryzen 7 7840HS"),
			spec("RAM", "16GB"),
			spec("Graphics", "NVIDIA RTX 4060"),
		),
		phone(2, "Galaxy S23", 700),
	}}
	inferrer := &fakeInferrer{rules: []models.Rule{
		activeRule(1, "Gaming Laptop Rule", "Dedicated graphics are essential for gaming", 90, int64Ptr(laptopID)),
		activeRule(2, "Generic Value", "", 10, nil),
	}}
	svc := newRecommendationService(inferrer, catalog)

	resp, err := svc.GetRecommendations(context.Background(), models.Preferences{
		models.PrefBudget:    "1500",
		models.PrefUsageType: "gaming",
	}, 10)
	require.NoError(t, err)
	require.Len(t, resp.Products, 1, "rule categories limit the candidates to laptops")

	p := resp.Products[0]
	require.NotNil(t, p.MatchedRule)
	assert.Equal(t, "Gaming Laptop Rule", *p.MatchedRule)
	assert.Equal(t, []string{
		"Dedicated graphics are essential for gaming",
		"Generic Value",
		"Fits your $1500.00 budget",
		"Premium pricing reflects high-end specifications",
		"Dedicated graphics for smooth gameplay: NVIDIA RTX 4060",
		"16GB RAM handles modern games",
		"High-end processor for demanding titles: AMD Ryzen 7 7840HS",
		"Key features: AMD Ryzen 7 7840HS, 16GB",
	}, p.ReasoningPoints)
	assert.Contains(t, p.Reasoning, "Dedicated graphics are essential for gaming. Generic Value.")
	assert.Equal(t, "Laptop", p.Category)
	assert.Equal(t, "Dell", p.Brand)
	assert.Len(t, p.Specifications, 3)
	assert.Equal(t, 2, resp.FiredRules)
}

func TestGetRecommendations_NoMatchedRuleForProduct(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{phone(1, "Galaxy A15", 199)}}
	inferrer := &fakeInferrer{rules: []models.Rule{activeRule(1, "Laptop only", "", 90, int64Ptr(laptopID))}}
	svc := newRecommendationService(inferrer, catalog)

	resp, err := svc.GetRecommendations(context.Background(), models.Preferences{models.PrefCategory: "smartphone"}, 10)
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Nil(t, resp.Products[0].MatchedRule)
	assert.Equal(t, []string{"Excellent value - highly affordable"}, resp.Products[0].ReasoningPoints)
	assert.Equal(t, "Excellent value - highly affordable.", resp.Products[0].Reasoning)
}

func TestGetRecommendations_Errors(t *testing.T) {
	_, err := newRecommendationService(&fakeInferrer{err: errors.New("boom")}, &fakeCatalog{}).
		GetRecommendations(context.Background(), models.Preferences{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run inference")

	_, err = newRecommendationService(&fakeInferrer{}, &fakeCatalog{err: errors.New("timeout")}).
		GetRecommendations(context.Background(), models.Preferences{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list products")
}

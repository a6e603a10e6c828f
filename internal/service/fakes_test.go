package service

import (
	"context"
	"strings"

	"tech-advisor/internal/models"
)

type fakeCatalog struct {
	products []models.Product
	err      error
	filters  []models.ProductFilter
}

func (f *fakeCatalog) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}

	var out []models.Product
	for _, p := range f.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if len(filter.CategoryIDs) > 0 && !containsID(filter.CategoryIDs, p.CategoryID) {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.BrandID != nil && p.BrandID != *filter.BrandID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeResolver struct {
	categories map[string]int64
	brands     map[string]int64
}

func (f *fakeResolver) ResolveCategoryID(_ context.Context, name string) (int64, bool, error) {
	id, ok := f.categories[strings.ToLower(name)]
	return id, ok, nil
}

func (f *fakeResolver) ResolveBrandID(_ context.Context, name string) (int64, bool, error) {
	id, ok := f.brands[strings.ToLower(name)]
	return id, ok, nil
}

type fakeInferrer struct {
	rules  []models.Rule
	err    error
	inputs []models.Preferences
}

func (f *fakeInferrer) Infer(_ context.Context, inputs models.Preferences) ([]models.Rule, error) {
	f.inputs = append(f.inputs, inputs.Clone())
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

const (
	smartphoneID int64 = 1
	laptopID     int64 = 2
	appleID      int64 = 10
	samsungID    int64 = 11
	dellID       int64 = 12
)

func spec(key, value string) models.Specification {
	return models.Specification{Key: key, Value: value}
}

func phone(id int64, name string, price float64, specs ...models.Specification) models.Product {
	return models.Product{
		ID:             id,
		Name:           name,
		BrandID:        samsungID,
		BrandName:      "Samsung",
		CategoryID:     smartphoneID,
		CategoryName:   "Smartphone",
		Price:          price,
		IsActive:       true,
		Specifications: specs,
	}
}

func laptop(id int64, name string, price float64, specs ...models.Specification) models.Product {
	return models.Product{
		ID:             id,
		Name:           name,
		BrandID:        dellID,
		BrandName:      "Dell",
		CategoryID:     laptopID,
		CategoryName:   "Laptop",
		Price:          price,
		IsActive:       true,
		Specifications: specs,
	}
}

func newTestResolver() *fakeResolver {
	return &fakeResolver{
		categories: map[string]int64{"smartphone": smartphoneID, "laptop": laptopID},
		brands:     map[string]int64{"apple": appleID, "samsung": samsungID, "dell": dellID},
	}
}

func int64Ptr(v int64) *int64 { return &v }

package main

import (
	_ "embed"
	"fmt"
	"os"

	"tech-advisor/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedData struct {
	Categories []seedCategory `yaml:"categories"`
	Brands     []seedBrand    `yaml:"brands"`
	Products   []seedProduct  `yaml:"products"`
	Rules      []seedRule     `yaml:"rules"`
}

type seedCategory struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type seedBrand struct {
	Name    string `yaml:"name"`
	LogoURL string `yaml:"logo_url"`
}

type seedSpec struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type seedProduct struct {
	Name           string     `yaml:"name"`
	Brand          string     `yaml:"brand"`
	Category       string     `yaml:"category"`
	Price          float64    `yaml:"price"`
	Description    string     `yaml:"description"`
	ImageURL       string     `yaml:"image_url"`
	Inactive       bool       `yaml:"inactive"`
	Specifications []seedSpec `yaml:"specifications"`
}

type seedCondition struct {
	Type     string `yaml:"type"`
	Key      string `yaml:"key"`
	Operator string `yaml:"operator"`
	Value    string `yaml:"value"`
}

type seedRule struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Category    string          `yaml:"category"`
	Priority    int             `yaml:"priority"`
	Inactive    bool            `yaml:"inactive"`
	Conditions  []seedCondition `yaml:"conditions"`
}

// loadSeedData reads path, or the embedded data set when path is empty.
func loadSeedData(path string) (*seedData, error) {
	raw := defaultSeed
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}

	var data seedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *seedData) validate() error {
	categories := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		categories[c.Name] = true
	}
	brands := make(map[string]bool, len(d.Brands))
	for _, b := range d.Brands {
		brands[b.Name] = true
	}

	for _, p := range d.Products {
		if !categories[p.Category] {
			return fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
		if !brands[p.Brand] {
			return fmt.Errorf("product %q: unknown brand %q", p.Name, p.Brand)
		}
		if p.Price < 0 {
			return fmt.Errorf("product %q: negative price", p.Name)
		}
	}

	names := make(map[string]bool, len(d.Rules))
	for _, r := range d.Rules {
		if names[r.Name] {
			return fmt.Errorf("duplicate rule %q", r.Name)
		}
		names[r.Name] = true
		if r.Category != "" && !categories[r.Category] {
			return fmt.Errorf("rule %q: unknown category %q", r.Name, r.Category)
		}
		for _, c := range r.Conditions {
			if models.ParseOperator(c.Operator) == models.OperatorUnknown {
				return fmt.Errorf("rule %q: unknown operator %q", r.Name, c.Operator)
			}
		}
	}
	return nil
}

func (c seedCategory) toModel() models.Category {
	return models.Category{Name: c.Name, Description: c.Description}
}

func (b seedBrand) toModel() models.Brand {
	return models.Brand{Name: b.Name, LogoURL: b.LogoURL}
}

func (p seedProduct) toModel(brandID, categoryID int64) models.Product {
	specs := make([]models.Specification, 0, len(p.Specifications))
	for _, s := range p.Specifications {
		specs = append(specs, models.Specification{Key: s.Key, Value: s.Value})
	}
	return models.Product{
		Name:           p.Name,
		BrandID:        brandID,
		CategoryID:     categoryID,
		Price:          p.Price,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		IsActive:       !p.Inactive,
		Specifications: specs,
	}
}

func (r seedRule) toModel(categoryID *int64) models.Rule {
	conds := make([]models.RuleCondition, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		conds = append(conds, models.RuleCondition{
			Type:     c.Type,
			Key:      c.Key,
			Operator: models.ParseOperator(c.Operator),
			Value:    c.Value,
		})
	}
	return models.Rule{
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  categoryID,
		Priority:    r.Priority,
		IsActive:    !r.Inactive,
		Conditions:  conds,
	}
}

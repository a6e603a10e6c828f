package models

import (
	"strings"
	"time"
)

type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

type Brand struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LogoURL   string    `db:"logo_url" json:"logo_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Specification is one administrator-entered key/value pair. Values are free text.
type Specification struct {
	Key   string `db:"spec_key" json:"key"`
	Value string `db:"spec_value" json:"value"`
}

type Product struct {
	ID             int64           `db:"id"`
	Name           string          `db:"name"`
	BrandID        int64           `db:"brand_id"`
	BrandName      string          `db:"brand_name"`
	CategoryID     int64           `db:"category_id"`
	CategoryName   string          `db:"category_name"`
	Price          float64         `db:"price"`
	ImageURL       string          `db:"image_url"`
	Description    string          `db:"description"`
	IsActive       bool            `db:"is_active"`
	Specifications []Specification `db:"-"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// CategoryKey is the lower-cased category name used to look up benchmarks.
func (p *Product) CategoryKey() string {
	return strings.ToLower(strings.TrimSpace(p.CategoryName))
}

// SpecMap returns the specifications keyed by their original key. Later
// duplicates overwrite earlier ones.
func (p *Product) SpecMap() map[string]string {
	m := make(map[string]string, len(p.Specifications))
	for _, s := range p.Specifications {
		m[s.Key] = s.Value
	}
	return m
}

// ProductFilter narrows a catalog query. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryIDs []int64
	MaxPrice    *float64
	BrandID     *int64
	ActiveOnly  bool
}

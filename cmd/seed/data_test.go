package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tech-advisor/internal/models"
)

func TestLoadSeedData_Embedded(t *testing.T) {
	data, err := loadSeedData("")
	require.NoError(t, err)

	assert.Len(t, data.Categories, 2)
	assert.NotEmpty(t, data.Brands)
	assert.NotEmpty(t, data.Products)
	assert.Len(t, data.Rules, 25)

	var phones, laptops int
	for _, p := range data.Products {
		switch p.Category {
		case "Smartphone":
			phones++
		case "Laptop":
			laptops++
		}
		assert.NotEmpty(t, p.Specifications, p.Name)
	}
	assert.Positive(t, phones)
	assert.Positive(t, laptops)
}

func TestSeedRule_ToModel(t *testing.T) {
	data, err := loadSeedData("")
	require.NoError(t, err)

	var rule seedRule
	for _, r := range data.Rules {
		if r.Name == "Gaming Smartphone - Mid Range" {
			rule = r
		}
	}
	require.NotEmpty(t, rule.Name)

	id := int64(3)
	m := rule.toModel(&id)
	assert.Equal(t, 80, m.Priority)
	assert.True(t, m.IsActive)
	assert.Equal(t, &id, m.CategoryID)
	require.Len(t, m.Conditions, 3)
	assert.Equal(t, models.OperatorEquals, m.Conditions[0].Operator)
	assert.Equal(t, models.OperatorGreaterEqual, m.Conditions[1].Operator)
	assert.Equal(t, models.OperatorLessThan, m.Conditions[2].Operator)
	assert.Equal(t, "800", m.Conditions[2].Value)
}

func TestLoadSeedData_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown brand": `
categories: [{name: Laptop}]
brands: [{name: Dell}]
products: [{name: X, brand: HP, category: Laptop, price: 1}]`,
		"unknown operator": `
categories: [{name: Laptop}]
rules: [{name: R, category: Laptop, conditions: [{key: budget, operator: about, value: "5"}]}]`,
		"duplicate rule": `
rules: [{name: R}, {name: R}]`,
		"not yaml": `categories: [unclosed`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := loadSeedData(path)
			assert.Error(t, err)
		})
	}

	_, err := loadSeedData(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

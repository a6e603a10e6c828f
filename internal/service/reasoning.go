package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tech-advisor/internal/models"
	"tech-advisor/internal/specs"
)

const maxKeyFeatures = 3

// budgetReasoning describes the price tier of a product.
func budgetReasoning(price float64) string {
	switch {
	case price < 300:
		return "Excellent value - highly affordable"
	case price < 600:
		return "Great budget option with good features"
	case price < 1000:
		return "Mid-range pricing with premium features"
	default:
		return "Premium pricing reflects high-end specifications"
	}
}

// budgetFit relates the price to the user's budget. Empty without a budget.
func budgetFit(price float64, prefs models.Preferences) string {
	budget, ok := prefs.Budget()
	if !ok {
		return ""
	}
	if price <= budget*0.7 {
		return fmt.Sprintf("At $%.2f it leaves room in your $%.2f budget", price, budget)
	}
	return fmt.Sprintf("Fits your $%.2f budget", budget)
}

// keyFeatures summarises up to three headline specifications.
func keyFeatures(p *models.Product) string {
	groups := [][]string{processorKeys, ramKeys, storageKeys, displayKeys}

	features := make([]string, 0, maxKeyFeatures)
	for _, keys := range groups {
		if len(features) == maxKeyFeatures {
			break
		}
		if v, ok := specs.FindSpecValue(p.Specifications, keys...); ok && strings.TrimSpace(v) != "" {
			features = append(features, strings.TrimSpace(v))
		}
	}
	if len(features) == 0 {
		return ""
	}
	return "Key features: " + strings.Join(features, ", ")
}

// joinReasoning turns the ordered points into a single sentence list.
func joinReasoning(points []string) string {
	cleaned := make([]string, 0, len(points))
	for _, p := range points {
		p = strings.TrimRight(strings.TrimSpace(p), ".")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return strings.Join(cleaned, ". ") + "."
}

// sanitizeUTF8 drops invalid UTF-8 sequences from administrator-entered text
// before it is rendered as JSON.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

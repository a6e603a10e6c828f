package service

import (
	"fmt"
	"math"
	"strings"

	"tech-advisor/internal/models"
	"tech-advisor/internal/specs"
)

// Specification key keywords, matched as case-insensitive substrings.
var (
	ramKeys       = []string{"ram", "memory"}
	storageKeys   = []string{"storage", "ssd"}
	batteryKeys   = []string{"battery"}
	cameraKeys    = []string{"camera"}
	processorKeys = []string{"processor", "cpu"}
	graphicsKeys  = []string{"graphics", "gpu"}
	displayKeys   = []string{"display", "screen"}
	weightKeys    = []string{"weight"}
)

const (
	baseScore        = 50.0
	budgetWeight     = 25.0
	overBudgetCost   = 15.0
	valueSweetSpot   = 0.8
	specScoreCap     = 40.0
	premiumBonus     = 5.0
	brandBonus       = 10.0
	usageBonus       = 15.0
	highRAMThreshold = 16.0
)

// Scorer computes the bounded 0-100 product score shared by recommendations
// and comparisons. It only reads its tables and is safe for concurrent use.
type Scorer struct {
	tables Tables
}

func NewScorer(tables Tables) *Scorer {
	return &Scorer{tables: tables}
}

func (s *Scorer) Tables() Tables {
	return s.tables
}

// OverallScore returns the weighted score of a product for the preferences,
// clamped to [0, 100] and rounded to one decimal place.
func (s *Scorer) OverallScore(p *models.Product, prefs models.Preferences) float64 {
	score := baseScore
	score += s.budgetScore(p, prefs)
	score += s.specScore(p)

	if brand := prefs.PreferredBrand(); brand != "" && strings.EqualFold(p.BrandName, brand) {
		score += brandBonus
	}
	score += s.usageScore(p, prefs.UsageType())

	score = math.Max(0, math.Min(100, score))
	return math.Round(score*10) / 10
}

func (s *Scorer) budgetScore(p *models.Product, prefs models.Preferences) float64 {
	budget, ok := prefs.Budget()
	if !ok {
		return 0
	}
	if p.Price > budget {
		return -overBudgetCost
	}
	ratio := p.Price / budget
	return budgetWeight * (1 - math.Abs(ratio-valueSweetSpot))
}

func (s *Scorer) specScore(p *models.Product) float64 {
	category := p.CategoryKey()
	total := 0.0

	for _, spec := range p.Specifications {
		if specs.KeyMatches(spec.Key, ramKeys...) {
			total += s.tierPoints(category, MetricRAM, spec.Value)
		}
		if specs.KeyMatches(spec.Key, storageKeys...) {
			if gb, ok := specs.StorageGB(spec.Value); ok {
				if tier, has := s.StorageTier(category, spec.Key); has {
					total += tierAward(gb, tier)
				}
			}
		}
		if specs.ContainsTerm(spec.Value, s.tables.PremiumKeywords...) {
			total += premiumBonus
		}
	}

	return math.Min(specScoreCap, total)
}

// tierPoints awards 10/6/2 for excellent/good/other. A value without a
// positive number earns nothing.
func (s *Scorer) tierPoints(category, metric, value string) float64 {
	n, ok := specs.ExtractNumber(value)
	if !ok {
		return 0
	}
	tier, ok := s.tables.Tier(category, metric)
	if !ok {
		return 0
	}
	return tierAward(n, tier)
}

func tierAward(n float64, tier Tier) float64 {
	if n <= 0 {
		return 0
	}
	switch {
	case n >= tier.Excellent:
		return 10
	case n >= tier.Good:
		return 6
	default:
		return 2
	}
}

// StorageTier picks the benchmark for a storage key. Keys naming an SSD use
// the category's SSD tier when it has one.
func (s *Scorer) StorageTier(category, key string) (Tier, bool) {
	if specs.KeyMatches(key, "ssd") {
		if tier, ok := s.tables.Benchmarks[category][MetricSSD]; ok {
			return tier, true
		}
	}
	return s.tables.Tier(category, MetricStorage)
}

func (s *Scorer) usageScore(p *models.Product, usage string) float64 {
	switch usage {
	case "gaming":
		if s.hasGamingGraphics(p) {
			return usageBonus
		}
	case "work", "business", "professional":
		if hasRAMAtLeast(p, highRAMThreshold) {
			return usageBonus
		}
	}
	return 0
}

func (s *Scorer) hasGamingGraphics(p *models.Product) bool {
	for _, spec := range p.Specifications {
		if specs.KeyMatches(spec.Key, graphicsKeys...) && specs.ContainsAny(spec.Value, s.tables.GamingGraphicsKeywords...) {
			return true
		}
	}
	return false
}

func hasRAMAtLeast(p *models.Product, gb float64) bool {
	for _, spec := range p.Specifications {
		if specs.KeyMatches(spec.Key, ramKeys...) && specs.ExtractNumberOr(spec.Value, 0) >= gb {
			return true
		}
	}
	return false
}

// RateProcessor maps a processor description to a 1-10 rating using the
// first matching pattern.
func (s *Scorer) RateProcessor(processor string) int {
	lower := strings.ToLower(processor)
	for _, r := range s.tables.ProcessorRatings {
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return r.Rating
		}
	}
	return s.tables.DefaultProcessorRating
}

// UsageFit explains how a product suits the usage type. It does not affect
// the score.
func (s *Scorer) UsageFit(p *models.Product, usage string) []string {
	var reasons []string
	category := p.CategoryKey()

	switch usage {
	case "gaming":
		if gpu, ok := specs.FindSpecValue(p.Specifications, graphicsKeys...); ok &&
			specs.ContainsAny(gpu, s.tables.DedicatedGraphicsKeywords...) {
			reasons = append(reasons, fmt.Sprintf("Dedicated graphics for smooth gameplay: %s", gpu))
		}
		if ram, ok := specs.FindSpecValue(p.Specifications, ramKeys...); ok && specs.ExtractNumberOr(ram, 0) >= highRAMThreshold {
			reasons = append(reasons, fmt.Sprintf("%s RAM handles modern games", ram))
		}
		if cpu, ok := specs.FindSpecValue(p.Specifications, processorKeys...); ok &&
			specs.ContainsAny(cpu, s.tables.HighEndProcessorKeywords...) {
			reasons = append(reasons, fmt.Sprintf("High-end processor for demanding titles: %s", cpu))
		}
	case "work", "business", "professional":
		if battery, ok := specs.FindSpecValue(p.Specifications, batteryKeys...); ok {
			n, parsed := specs.ExtractNumber(battery)
			if tier, has := s.tables.Tier(category, MetricBattery); parsed && has && n >= tier.Good {
				reasons = append(reasons, fmt.Sprintf("Long battery life for a full workday: %s", battery))
			}
		}
		if weight, ok := specs.FindSpecValue(p.Specifications, weightKeys...); ok {
			kg, parsed := specs.WeightKg(weight)
			if limit, has := s.tables.LightweightKg[category]; parsed && has && kg <= limit {
				reasons = append(reasons, fmt.Sprintf("Lightweight and portable at %s", weight))
			}
		}
	case "study":
		reasons = append(reasons, "Well suited for coursework and everyday study")
	case "creative":
		if ram, ok := specs.FindSpecValue(p.Specifications, ramKeys...); ok && specs.ExtractNumberOr(ram, 0) >= highRAMThreshold {
			reasons = append(reasons, fmt.Sprintf("%s RAM keeps large creative projects responsive", ram))
		}
		if display, ok := specs.FindSpecValue(p.Specifications, displayKeys...); ok &&
			specs.ContainsAny(display, s.tables.PremiumDisplayKeywords...) {
			reasons = append(reasons, fmt.Sprintf("Premium display for accurate visuals: %s", display))
		}
	}

	return reasons
}

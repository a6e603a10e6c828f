package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tech-advisor/internal/dto"
	"tech-advisor/internal/models"
	"tech-advisor/internal/specs"
	"tech-advisor/pkg/metrics"

	"go.uber.org/zap"
)

const (
	maxPros               = 6
	maxCons               = 6
	closeMatchGap         = 5.0
	dominantAdvantages    = 3
	wellUnderBudgetRatio  = 0.7
	budgetCeilingRatio    = 0.95
	fallbackPro           = "Solid specifications for everyday use"
	fallbackCon           = "No significant drawbacks identified"
	closelyMatchedMessage = "Both products are very closely matched and too close to call. Your final choice may come down to personal preference or brand loyalty."
)

// Comparison dimension names.
const (
	DimensionPrice     = "Price"
	DimensionRAM       = "RAM"
	DimensionStorage   = "Storage"
	DimensionBattery   = "Battery"
	DimensionProcessor = "Processor"
	DimensionBrand     = "Brand"
)

type ComparisonService struct {
	catalog ProductCatalog
	scorer  *Scorer
	logger  *zap.Logger
}

func NewComparisonService(catalog ProductCatalog, scorer *Scorer, logger *zap.Logger) *ComparisonService {
	return &ComparisonService{
		catalog: catalog,
		scorer:  scorer,
		logger:  logger,
	}
}

// Compare loads both products and compares them.
func (s *ComparisonService) Compare(ctx context.Context, id1, id2 int64, prefs models.Preferences) (*dto.ComparisonResponse, error) {
	if id1 == id2 {
		return nil, ErrInvalidComparison
	}

	p1, err := s.load(ctx, id1)
	if err != nil {
		return nil, err
	}
	p2, err := s.load(ctx, id2)
	if err != nil {
		return nil, err
	}

	result := s.CompareProducts(p1, p2, prefs)

	s.logger.Info("Products compared",
		zap.Int64("product1_id", id1),
		zap.Int64("product2_id", id2),
		zap.Float64("score1", result.Product1.Score),
		zap.Float64("score2", result.Product2.Score),
		zap.Int("winner", result.Winner),
	)

	return result, nil
}

func (s *ComparisonService) load(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return p, nil
}

// CompareProducts builds the full comparison of two already loaded products.
func (s *ComparisonService) CompareProducts(p1, p2 *models.Product, prefs models.Preferences) *dto.ComparisonResponse {
	if prefs == nil {
		prefs = models.Preferences{}
	}

	advantages := s.ComparativeAdvantages(p1, p2)
	score1 := s.scorer.OverallScore(p1, prefs)
	score2 := s.scorer.OverallScore(p2, prefs)

	winner := 0
	if math.Abs(score1-score2) >= closeMatchGap {
		if score1 > score2 {
			winner = 1
		} else {
			winner = 2
		}
	}

	metrics.RecordComparison(winner)

	return &dto.ComparisonResponse{
		Product1:              s.comparedProduct(p1, prefs, score1),
		Product2:              s.comparedProduct(p2, prefs, score2),
		ComparativeAdvantages: advantages,
		Winner:                winner,
		WinnerReason:          winnerReason(p1, p2, winner, advantages),
		PriceDifference:       math.Round(math.Abs(p1.Price-p2.Price)*100) / 100,
		SameCategory:          p1.CategoryID == p2.CategoryID,
	}
}

func (s *ComparisonService) comparedProduct(p *models.Product, prefs models.Preferences, score float64) dto.ComparedProduct {
	specMap := make(map[string]string, len(p.Specifications))
	for key, value := range p.SpecMap() {
		specMap[sanitizeUTF8(key)] = sanitizeUTF8(value)
	}

	return dto.ComparedProduct{
		ID:             p.ID,
		Name:           sanitizeUTF8(p.Name),
		Brand:          p.BrandName,
		Category:       p.CategoryName,
		Price:          p.Price,
		ImageURL:       p.ImageURL,
		Description:    sanitizeUTF8(p.Description),
		Pros:           s.ExtractPros(p, prefs),
		Cons:           s.ExtractCons(p, prefs),
		Score:          score,
		Specifications: specMap,
	}
}

// ExtractPros lists the strengths of a product, at most six and never empty.
func (s *ComparisonService) ExtractPros(p *models.Product, prefs models.Preferences) []string {
	tables := s.scorer.Tables()
	category := p.CategoryKey()
	pros := newBoundedList(maxPros)

	if budget, ok := prefs.Budget(); ok {
		if p.Price <= budget*wellUnderBudgetRatio {
			pros.add(fmt.Sprintf("Excellent value - priced at $%.2f, well under your $%.2f budget", p.Price, budget))
		} else if p.Price <= budget {
			pros.add(fmt.Sprintf("Fits your budget perfectly at $%.2f", p.Price))
		}
	}

	if brand := prefs.PreferredBrand(); brand != "" && strings.EqualFold(p.BrandName, brand) {
		pros.add(fmt.Sprintf("Your preferred brand: %s", p.BrandName))
	}

	for _, spec := range p.Specifications {
		value := sanitizeUTF8(spec.Value)
		n, parsed := specs.ExtractNumber(spec.Value)
		parsed = parsed && n > 0

		if specs.KeyMatches(spec.Key, ramKeys...) && parsed {
			if tier, ok := tables.Tier(category, MetricRAM); ok {
				switch {
				case n >= tier.Excellent:
					pros.add("Excellent RAM capacity: " + value)
				case n >= tier.Good:
					pros.add("Good RAM for multitasking: " + value)
				}
			}
		}

		if specs.KeyMatches(spec.Key, storageKeys...) {
			gb, ok := specs.StorageGB(spec.Value)
			if tier, has := s.scorer.StorageTier(category, spec.Key); ok && gb > 0 && has {
				switch {
				case gb >= tier.Excellent:
					pros.add("Ample storage space: " + value)
				case gb >= tier.Good:
					pros.add("Sufficient storage: " + value)
				}
			}
		}

		if specs.KeyMatches(spec.Key, batteryKeys...) && parsed {
			if tier, ok := tables.Tier(category, MetricBattery); ok {
				switch {
				case n >= tier.Excellent && category == "laptop":
					pros.add("Extended battery life: " + value)
				case n >= tier.Excellent:
					pros.add("Long-lasting battery: " + value)
				case n >= tier.Good:
					pros.add("Good battery life: " + value)
				}
			}
		}

		if specs.KeyMatches(spec.Key, displayKeys...) && specs.ContainsAny(spec.Value, tables.PremiumDisplayKeywords...) {
			pros.add("Premium display: " + value)
		}

		if specs.KeyMatches(spec.Key, cameraKeys...) && parsed {
			if tier, ok := tables.Benchmarks[category][MetricCamera]; ok && n >= tier.Good {
				pros.add("High-quality camera: " + value)
			}
		}

		if specs.KeyMatches(spec.Key, processorKeys...) && specs.ContainsAny(spec.Value, tables.HighEndProcessorKeywords...) {
			pros.add("Powerful processor: " + value)
		}

		if specs.KeyMatches(spec.Key, graphicsKeys...) && specs.ContainsAny(spec.Value, tables.DedicatedGraphicsKeywords...) {
			pros.add("Dedicated graphics: " + value)
		}

		if specs.ContainsTerm(spec.Value, "5g") {
			pros.add("5G connectivity support")
		}
		if specs.ContainsTerm(spec.Value, "wifi 6", "wi-fi 6", "wifi 6e", "wi-fi 6e") {
			pros.add("Latest WiFi 6 standard")
		}
	}

	if prefs.UsageType() == "gaming" &&
		specs.HasKey(p.Specifications, graphicsKeys...) &&
		hasRAMAtLeast(p, highRAMThreshold) {
		pros.add("Optimized for gaming performance")
	}

	return pros.result(fallbackPro)
}

// ExtractCons lists the weaknesses of a product, at most six and never empty.
func (s *ComparisonService) ExtractCons(p *models.Product, prefs models.Preferences) []string {
	tables := s.scorer.Tables()
	category := p.CategoryKey()
	cons := newBoundedList(maxCons)

	if budget, ok := prefs.Budget(); ok {
		if p.Price > budget {
			cons.add(fmt.Sprintf("Over budget by $%.2f", p.Price-budget))
		} else if p.Price >= budget*budgetCeilingRatio {
			cons.add("At the upper limit of your budget")
		}
	}

	if !specs.HasKey(p.Specifications, ramKeys...) {
		cons.add("RAM specifications not disclosed")
	}
	if !specs.HasKey(p.Specifications, storageKeys...) {
		cons.add("Storage information not available")
	}
	if !specs.HasKey(p.Specifications, batteryKeys...) {
		cons.add("Battery details not specified")
	}

	gaming := prefs.UsageType() == "gaming"
	for _, spec := range p.Specifications {
		value := sanitizeUTF8(spec.Value)
		n, parsed := specs.ExtractNumber(spec.Value)
		parsed = parsed && n > 0

		if specs.KeyMatches(spec.Key, ramKeys...) && parsed {
			if tier, ok := tables.Tier(category, MetricRAM); ok && n < tier.Minimum {
				cons.add(fmt.Sprintf("Limited RAM: %s may struggle with multitasking", value))
			}
		}

		if specs.KeyMatches(spec.Key, storageKeys...) {
			gb, ok := specs.StorageGB(spec.Value)
			if tier, has := s.scorer.StorageTier(category, spec.Key); ok && gb > 0 && has && gb < tier.Minimum {
				cons.add(fmt.Sprintf("Limited storage: %s may require external storage", value))
			}
		}

		if specs.KeyMatches(spec.Key, batteryKeys...) && parsed {
			if tier, ok := tables.Tier(category, MetricBattery); ok && n < tier.Minimum {
				cons.add(fmt.Sprintf("Smaller battery: %s may require frequent charging", value))
			}
		}

		if gaming && specs.KeyMatches(spec.Key, graphicsKeys...) && specs.ContainsAny(spec.Value, "integrated") {
			cons.add("Integrated graphics not ideal for gaming")
		}
	}

	if category == "smartphone" && !specs.AnyValueMentions(p.Specifications, "5g") {
		cons.add("No 5G support (4G only)")
	}

	return cons.result(fallbackCon)
}

// ComparativeAdvantages attributes each comparison dimension to the product
// that wins it. Winner 0 is a tie or a dimension that does not pick a side.
func (s *ComparisonService) ComparativeAdvantages(p1, p2 *models.Product) map[string]dto.Advantage {
	advantages := make(map[string]dto.Advantage)
	name1, name2 := sanitizeUTF8(p1.Name), sanitizeUTF8(p2.Name)

	switch {
	case p1.Price < p2.Price:
		advantages[DimensionPrice] = dto.Advantage{Winner: 1, Reason: fmt.Sprintf("%s is $%.2f cheaper", name1, p2.Price-p1.Price)}
	case p2.Price < p1.Price:
		advantages[DimensionPrice] = dto.Advantage{Winner: 2, Reason: fmt.Sprintf("%s is $%.2f cheaper", name2, p1.Price-p2.Price)}
	default:
		advantages[DimensionPrice] = dto.Advantage{Winner: 0, Reason: "Both products have the same price"}
	}

	numeric := []struct {
		dimension string
		keys      []string
		parse     func(string) (float64, bool)
	}{
		{DimensionRAM, ramKeys, specs.ExtractNumber},
		{DimensionStorage, storageKeys, specs.StorageGB},
		{DimensionBattery, batteryKeys, specs.ExtractNumber},
	}
	for _, d := range numeric {
		v1, ok1 := specs.FindSpecValue(p1.Specifications, d.keys...)
		v2, ok2 := specs.FindSpecValue(p2.Specifications, d.keys...)
		advantages[d.dimension] = compareNumericSpec(d.dimension, name1, name2, sanitizeUTF8(v1), sanitizeUTF8(v2), ok1, ok2, d.parse)
	}

	proc1, ok1 := specs.FindSpecValue(p1.Specifications, processorKeys...)
	proc2, ok2 := specs.FindSpecValue(p2.Specifications, processorKeys...)
	if ok1 && ok2 {
		r1, r2 := s.scorer.RateProcessor(proc1), s.scorer.RateProcessor(proc2)
		switch {
		case r1 > r2:
			advantages[DimensionProcessor] = dto.Advantage{Winner: 1, Reason: name1 + " has a more powerful processor"}
		case r2 > r1:
			advantages[DimensionProcessor] = dto.Advantage{Winner: 2, Reason: name2 + " has a more powerful processor"}
		default:
			advantages[DimensionProcessor] = dto.Advantage{Winner: 0, Reason: "Similar processor performance"}
		}
	}

	if p1.BrandID != p2.BrandID {
		advantages[DimensionBrand] = dto.Advantage{
			Winner: 0,
			Reason: fmt.Sprintf("Different brands: %s vs %s - personal preference", p1.BrandName, p2.BrandName),
		}
	}

	return advantages
}

// compareNumericSpec awards a dimension to the side that lists it when only
// one does, otherwise to the larger number as read by parse. Unparseable
// values count as zero.
func compareNumericSpec(
	dimension, name1, name2, v1, v2 string,
	has1, has2 bool,
	parse func(string) (float64, bool),
) dto.Advantage {
	switch {
	case !has1 && !has2:
		return dto.Advantage{Winner: 0, Reason: fmt.Sprintf("Neither product lists %s", dimension)}
	case !has1:
		return dto.Advantage{Winner: 2, Reason: fmt.Sprintf("%s lists %s: %s", name2, dimension, v2)}
	case !has2:
		return dto.Advantage{Winner: 1, Reason: fmt.Sprintf("%s lists %s: %s", name1, dimension, v1)}
	}

	n1, _ := parse(v1)
	n2, _ := parse(v2)
	switch {
	case n1 > n2:
		return dto.Advantage{Winner: 1, Reason: fmt.Sprintf("%s has more %s: %s vs %s", name1, dimension, v1, v2)}
	case n2 > n1:
		return dto.Advantage{Winner: 2, Reason: fmt.Sprintf("%s has more %s: %s vs %s", name2, dimension, v2, v1)}
	default:
		return dto.Advantage{Winner: 0, Reason: fmt.Sprintf("Both have equal %s: %s", dimension, v1)}
	}
}

func winnerReason(p1, p2 *models.Product, winner int, advantages map[string]dto.Advantage) string {
	if winner == 0 {
		return closelyMatchedMessage
	}

	won, lost := p1, p2
	if winner == 2 {
		won, lost = p2, p1
	}
	name := sanitizeUTF8(won.Name)

	count := 0
	for _, adv := range advantages {
		if adv.Winner == winner {
			count++
		}
	}

	switch {
	case count >= dominantAdvantages:
		return fmt.Sprintf("%s is the recommended choice, winning in %d key categories including performance, features, and value.", name, count)
	case won.Price < lost.Price && winner == 1:
		return fmt.Sprintf("%s offers better value for money with comparable or superior features at a lower price point.", name)
	case won.Price < lost.Price:
		return fmt.Sprintf("%s provides excellent value with strong performance at a more competitive price.", name)
	default:
		return fmt.Sprintf("%s edges ahead with a better overall balance of features, performance, and price.", name)
	}
}

// boundedList collects distinct entries up to a limit.
type boundedList struct {
	items []string
	seen  map[string]struct{}
	limit int
}

func newBoundedList(limit int) *boundedList {
	return &boundedList{seen: make(map[string]struct{}), limit: limit}
}

func (l *boundedList) add(item string) {
	if len(l.items) >= l.limit {
		return
	}
	if _, ok := l.seen[item]; ok {
		return
	}
	l.seen[item] = struct{}{}
	l.items = append(l.items, item)
}

func (l *boundedList) result(fallback string) []string {
	if len(l.items) == 0 {
		return []string{fallback}
	}
	return l.items
}

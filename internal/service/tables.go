package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Benchmark metric names.
const (
	MetricRAM     = "ram"
	MetricStorage = "storage"
	MetricSSD     = "ssd"
	MetricBattery = "battery"
	MetricCamera  = "camera"
)

// Tier holds the minimum/good/excellent thresholds of one metric.
type Tier struct {
	Minimum   float64 `yaml:"minimum"`
	Good      float64 `yaml:"good"`
	Excellent float64 `yaml:"excellent"`
}

// ProcessorRating maps a processor model substring to a 1-10 rating. The
// first matching entry wins, so more specific patterns go first.
type ProcessorRating struct {
	Pattern string `yaml:"pattern"`
	Rating  int    `yaml:"rating"`
}

// Tables is the lookup data behind scoring, pros/cons and comparison. It is
// built once and handed to the services; nothing mutates it afterwards.
type Tables struct {
	// Benchmarks is keyed by lower-case category name, then metric.
	Benchmarks map[string]map[string]Tier `yaml:"benchmarks"`
	// FallbackBenchmarks apply to categories without their own entry.
	FallbackBenchmarks map[string]Tier `yaml:"fallback_benchmarks"`

	ProcessorRatings       []ProcessorRating `yaml:"processor_ratings"`
	DefaultProcessorRating int               `yaml:"default_processor_rating"`

	// PremiumKeywords match as standalone terms in specification values.
	PremiumKeywords           []string `yaml:"premium_keywords"`
	PremiumDisplayKeywords    []string `yaml:"premium_display_keywords"`
	HighEndProcessorKeywords  []string `yaml:"high_end_processor_keywords"`
	DedicatedGraphicsKeywords []string `yaml:"dedicated_graphics_keywords"`
	GamingGraphicsKeywords    []string `yaml:"gaming_graphics_keywords"`

	// LightweightKg is the weight at or below which a device counts as light.
	LightweightKg map[string]float64 `yaml:"lightweight_kg"`
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Benchmarks: map[string]map[string]Tier{
			"smartphone": {
				MetricRAM:     {Minimum: 6, Good: 8, Excellent: 12},
				MetricStorage: {Minimum: 64, Good: 128, Excellent: 256},
				MetricBattery: {Minimum: 3000, Good: 4000, Excellent: 5000},
				MetricCamera:  {Minimum: 12, Good: 48, Excellent: 108},
			},
			"laptop": {
				MetricRAM:     {Minimum: 4, Good: 8, Excellent: 16},
				MetricStorage: {Minimum: 128, Good: 256, Excellent: 512},
				MetricSSD:     {Minimum: 256, Good: 512, Excellent: 1024},
				MetricBattery: {Minimum: 5, Good: 8, Excellent: 12},
			},
		},
		FallbackBenchmarks: map[string]Tier{
			MetricRAM:     {Minimum: 4, Good: 8, Excellent: 16},
			MetricStorage: {Minimum: 128, Good: 256, Excellent: 512},
		},
		ProcessorRatings: []ProcessorRating{
			{Pattern: "i9", Rating: 9},
			{Pattern: "ultra 9", Rating: 9},
			{Pattern: "i7", Rating: 7},
			{Pattern: "ultra 7", Rating: 7},
			{Pattern: "i5", Rating: 5},
			{Pattern: "ultra 5", Rating: 5},
			{Pattern: "i3", Rating: 3},
			{Pattern: "ryzen 9", Rating: 9},
			{Pattern: "ryzen 7", Rating: 7},
			{Pattern: "ryzen 5", Rating: 5},
			{Pattern: "m3", Rating: 9},
			{Pattern: "m2", Rating: 8},
			{Pattern: "m1", Rating: 7},
			{Pattern: "snapdragon 8", Rating: 8},
			{Pattern: "snapdragon 888", Rating: 8},
			{Pattern: "snapdragon 7", Rating: 6},
		},
		DefaultProcessorRating:    5,
		PremiumKeywords:           []string{"oled", "amoled", "5g", "wifi 6", "wi-fi 6", "wifi 6e", "wi-fi 6e", "rtx", "m1", "m2", "m3"},
		PremiumDisplayKeywords:    []string{"oled", "amoled", "4k", "retina", "120hz", "144hz", "165hz", "240hz"},
		HighEndProcessorKeywords:  []string{"i7", "i9", "ryzen 7", "ryzen 9", "m1", "m2", "m3", "snapdragon 8"},
		DedicatedGraphicsKeywords: []string{"rtx", "gtx", "dedicated", "nvidia", "radeon"},
		GamingGraphicsKeywords:    []string{"dedicated", "nvidia", "geforce", "rtx"},
		LightweightKg: map[string]float64{
			"laptop":     1.6,
			"smartphone": 0.2,
		},
	}
}

// Tier returns the benchmark for a metric in a category, falling back to
// FallbackBenchmarks.
func (t Tables) Tier(category, metric string) (Tier, bool) {
	if byMetric, ok := t.Benchmarks[category]; ok {
		if tier, ok := byMetric[metric]; ok {
			return tier, true
		}
	}
	tier, ok := t.FallbackBenchmarks[metric]
	return tier, ok
}

// Clone deep-copies the tables so the caller's copy can change freely.
func (t Tables) Clone() Tables {
	out := t
	out.Benchmarks = make(map[string]map[string]Tier, len(t.Benchmarks))
	for cat, metrics := range t.Benchmarks {
		m := make(map[string]Tier, len(metrics))
		for k, v := range metrics {
			m[k] = v
		}
		out.Benchmarks[cat] = m
	}
	out.FallbackBenchmarks = make(map[string]Tier, len(t.FallbackBenchmarks))
	for k, v := range t.FallbackBenchmarks {
		out.FallbackBenchmarks[k] = v
	}
	out.LightweightKg = make(map[string]float64, len(t.LightweightKg))
	for k, v := range t.LightweightKg {
		out.LightweightKg[k] = v
	}
	out.ProcessorRatings = append([]ProcessorRating(nil), t.ProcessorRatings...)
	out.PremiumKeywords = append([]string(nil), t.PremiumKeywords...)
	out.PremiumDisplayKeywords = append([]string(nil), t.PremiumDisplayKeywords...)
	out.HighEndProcessorKeywords = append([]string(nil), t.HighEndProcessorKeywords...)
	out.DedicatedGraphicsKeywords = append([]string(nil), t.DedicatedGraphicsKeywords...)
	out.GamingGraphicsKeywords = append([]string(nil), t.GamingGraphicsKeywords...)
	return out
}

// Validate checks that every tier is ordered minimum <= good <= excellent.
func (t Tables) Validate() error {
	check := func(where string, tier Tier) error {
		if tier.Minimum > tier.Good || tier.Good > tier.Excellent {
			return fmt.Errorf("benchmark %s: tiers must satisfy minimum <= good <= excellent", where)
		}
		return nil
	}
	for cat, metrics := range t.Benchmarks {
		for metric, tier := range metrics {
			if err := check(cat+"."+metric, tier); err != nil {
				return err
			}
		}
	}
	for metric, tier := range t.FallbackBenchmarks {
		if err := check("fallback."+metric, tier); err != nil {
			return err
		}
	}
	for _, r := range t.ProcessorRatings {
		if r.Pattern == "" {
			return fmt.Errorf("processor rating with empty pattern")
		}
	}
	return nil
}

// LoadTables reads a YAML file over the defaults. Keys present in the file
// replace the matching default entries; everything else keeps its default.
// An empty path returns the defaults.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read scoring tables: %w", err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return Tables{}, fmt.Errorf("failed to parse scoring tables: %w", err)
	}
	if err := tables.Validate(); err != nil {
		return Tables{}, err
	}
	return tables, nil
}

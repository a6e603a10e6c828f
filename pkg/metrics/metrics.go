package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of recommendation runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation runs by outcome",
		},
		[]string{"outcome"}, // "matched", "no_products", "no_matches", "error"
	)

	RulesFired = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_rules_fired",
			Help:    "Number of rules fired per recommendation run",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparisons_total",
			Help: "Total number of product comparisons by winner",
		},
		[]string{"winner"}, // "0", "1", "2"
	)

	// Rule Cache Metrics
	RuleCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rule_cache_hits_total",
			Help: "Total number of rule set cache hits",
		},
	)

	RuleCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rule_cache_misses_total",
			Help: "Total number of rule set cache misses",
		},
	)

	RuleCacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rule_cache_errors_total",
			Help: "Total number of rule set cache failures that fell back to the database",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRecommendation records one recommendation run.
func RecordRecommendation(outcome string, firedRules int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RulesFired.Observe(float64(firedRules))
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordComparison records one comparison and its winner (0 for a tie).
func RecordComparison(winner int) {
	ComparisonsTotal.WithLabelValues(strconv.Itoa(winner)).Inc()
}

// RecordRuleCache records a lookup against the rule set cache.
func RecordRuleCache(hit bool) {
	if hit {
		RuleCacheHits.Inc()
	} else {
		RuleCacheMisses.Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

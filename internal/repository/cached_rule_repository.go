package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"tech-advisor/internal/inference"
	"tech-advisor/internal/models"
	"tech-advisor/pkg/cache"
	"tech-advisor/pkg/metrics"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const ruleCachePrefix = "rules:"

// CachedRuleRepository keeps active rule sets in a cache, one entry per
// category scope. Cache failures fall back to the underlying store.
type CachedRuleRepository struct {
	store  inference.RuleStore
	cache  cache.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRuleRepository(store inference.RuleStore, client cache.Client, ttl time.Duration, logger *zap.Logger) *CachedRuleRepository {
	return &CachedRuleRepository{
		store:  store,
		cache:  client,
		ttl:    ttl,
		logger: logger,
	}
}

func ruleCacheKey(categoryID *int64) string {
	if categoryID == nil {
		return cache.Key("rules", "all")
	}
	return cache.Key("rules", "category", strconv.FormatInt(*categoryID, 10))
}

func (r *CachedRuleRepository) ActiveRules(ctx context.Context, categoryID *int64) ([]models.Rule, error) {
	key := ruleCacheKey(categoryID)

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var rules []models.Rule
		if err := json.Unmarshal(data, &rules); err == nil {
			metrics.RecordRuleCache(true)
			return rules, nil
		}
		r.logger.Warn("Discarding unreadable rule cache entry", zap.String("key", key))
		metrics.RuleCacheErrors.Inc()
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.RecordRuleCache(false)
	default:
		r.logger.Warn("Rule cache unavailable, reading from database", zap.Error(err))
		metrics.RuleCacheErrors.Inc()
	}

	rules, err := r.store.ActiveRules(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rules)
	if err != nil {
		r.logger.Warn("Failed to encode rules for cache", zap.Error(err))
		return rules, nil
	}
	if err := r.cache.Set(ctx, key, payload, r.ttl); err != nil {
		r.logger.Warn("Failed to cache rules", zap.String("key", key), zap.Error(err))
	}
	return rules, nil
}

// Invalidate drops every cached rule set.
func (r *CachedRuleRepository) Invalidate(ctx context.Context) error {
	if err := r.cache.DeleteByPrefix(ctx, ruleCachePrefix); err != nil {
		return err
	}
	r.logger.Info("Rule cache invalidated")
	return nil
}

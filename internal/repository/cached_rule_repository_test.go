package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tech-advisor/internal/models"
	"tech-advisor/pkg/cache"
)

type countingStore struct {
	rules []models.Rule
	err   error
	calls int
}

func (s *countingStore) ActiveRules(_ context.Context, _ *int64) ([]models.Rule, error) {
	s.calls++
	return s.rules, s.err
}

type brokenCache struct {
	cache.Client
}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func sampleRules() []models.Rule {
	phones := int64(1)
	return []models.Rule{{
		ID:          7,
		Name:        "Gaming phones",
		Description: "High refresh displays",
		CategoryID:  &phones,
		Priority:    80,
		IsActive:    true,
		Conditions: []models.RuleCondition{
			{ID: 1, RuleID: 7, Type: "user_input", Key: "usage_type", Operator: models.OperatorEquals, Value: "gaming"},
			{ID: 2, RuleID: 7, Type: "user_input", Key: "budget", Operator: models.OperatorGreaterEqual, Value: "500"},
		},
	}}
}

func TestCachedRuleRepository_CachesPerScope(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{rules: sampleRules()}
	repo := NewCachedRuleRepository(store, cache.NewMemoryClient(), time.Minute, zap.NewNop())
	phones := int64(1)

	first, err := repo.ActiveRules(ctx, &phones)
	require.NoError(t, err)
	second, err := repo.ActiveRules(ctx, &phones)
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, models.OperatorGreaterEqual, second[0].Conditions[1].Operator)

	_, err = repo.ActiveRules(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls, "unscoped rules use their own entry")
}

func TestCachedRuleRepository_Invalidate(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{rules: sampleRules()}
	repo := NewCachedRuleRepository(store, cache.NewMemoryClient(), time.Minute, zap.NewNop())

	_, err := repo.ActiveRules(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Invalidate(ctx))
	_, err = repo.ActiveRules(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls)
}

func TestCachedRuleRepository_FallsBackWhenCacheFails(t *testing.T) {
	store := &countingStore{rules: sampleRules()}
	repo := NewCachedRuleRepository(store, brokenCache{}, time.Minute, zap.NewNop())

	rules, err := repo.ActiveRules(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, sampleRules(), rules)
}

func TestCachedRuleRepository_StoreError(t *testing.T) {
	store := &countingStore{err: errors.New("db down")}
	repo := NewCachedRuleRepository(store, cache.NewMemoryClient(), time.Minute, zap.NewNop())

	_, err := repo.ActiveRules(context.Background(), nil)
	assert.EqualError(t, err, "db down")
}

func TestCachedRuleRepository_UnreadableEntryIsRefetched(t *testing.T) {
	ctx := context.Background()
	client := cache.NewMemoryClient()
	require.NoError(t, client.Set(ctx, ruleCacheKey(nil), []byte("{not json"), 0))

	store := &countingStore{rules: sampleRules()}
	repo := NewCachedRuleRepository(store, client, time.Minute, zap.NewNop())

	rules, err := repo.ActiveRules(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, store.calls)
}

func TestRuleCacheKey(t *testing.T) {
	id := int64(3)
	assert.Equal(t, "rules:all", ruleCacheKey(nil))
	assert.Equal(t, "rules:category:3", ruleCacheKey(&id))
}

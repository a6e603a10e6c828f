// Package inference implements the forward-chaining rule matcher that turns
// user preferences into the set of administrator rules that fire for them.
package inference

import (
	"context"
	"fmt"
	"sort"

	"tech-advisor/internal/models"

	"go.uber.org/zap"
)

// RuleStore supplies active rules. A nil categoryID asks for every active
// rule; otherwise the store returns rules for that category plus rules with
// no category.
type RuleStore interface {
	ActiveRules(ctx context.Context, categoryID *int64) ([]models.Rule, error)
}

// Engine is safe for concurrent use. It keeps no state between calls: every
// Infer builds its own working memory.
type Engine struct {
	store  RuleStore
	logger *zap.Logger
}

func NewEngine(store RuleStore, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

// Infer loads the active rules in scope for the facts and returns those that
// fire, highest priority first.
func (e *Engine) Infer(ctx context.Context, inputs models.Preferences) ([]models.Rule, error) {
	workingMemory := inputs.Clone()

	rules, err := e.candidates(ctx, workingMemory)
	if err != nil {
		return nil, err
	}

	matched := MatchRules(rules, workingMemory)

	e.logger.Debug("Inference completed",
		zap.Int("candidate_rules", len(rules)),
		zap.Int("fired_rules", len(matched)),
	)

	return matched, nil
}

// Explain runs the same selection as Infer but reports every candidate rule
// with the outcome of each condition.
func (e *Engine) Explain(ctx context.Context, inputs models.Preferences) ([]RuleTrace, error) {
	workingMemory := inputs.Clone()

	rules, err := e.candidates(ctx, workingMemory)
	if err != nil {
		return nil, err
	}

	return TraceRules(rules, workingMemory), nil
}

// candidates fetches the active rules in scope for the category named by
// the facts, if any.
func (e *Engine) candidates(ctx context.Context, facts models.Preferences) ([]models.Rule, error) {
	var scope *int64
	if id, ok := facts.CategoryID(); ok {
		scope = &id
	}

	rules, err := e.store.ActiveRules(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if scope != nil {
		rules = ScopeRules(rules, *scope)
	}
	return rules, nil
}

// ScopeRules keeps rules that target categoryID or no category at all.
func ScopeRules(rules []models.Rule, categoryID int64) []models.Rule {
	scoped := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		if r.AppliesTo(categoryID) {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

// MatchRules returns the active rules whose conditions all hold, sorted by
// priority descending. Rules of equal priority keep their input order.
func MatchRules(rules []models.Rule, facts models.Preferences) []models.Rule {
	matched := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if fires(r, facts) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})
	return matched
}

func fires(r models.Rule, facts models.Preferences) bool {
	for _, cond := range r.Conditions {
		if !EvaluateCondition(cond, facts) {
			return false
		}
	}
	return true
}

// ConditionTrace is the outcome of one condition.
type ConditionTrace struct {
	Condition models.RuleCondition
	Fact      string
	HasFact   bool
	Satisfied bool
}

// RuleTrace is the outcome of one rule.
type RuleTrace struct {
	Rule       models.Rule
	Fired      bool
	Conditions []ConditionTrace
}

// TraceRules evaluates every condition of every rule (no short-circuit) and
// orders the result like MatchRules: fired rules by priority, then the rest
// by priority.
func TraceRules(rules []models.Rule, facts models.Preferences) []RuleTrace {
	traces := make([]RuleTrace, 0, len(rules))
	for _, r := range rules {
		trace := RuleTrace{Rule: r, Fired: r.IsActive}
		for _, cond := range r.Conditions {
			fact, has := facts[cond.Key]
			ok := EvaluateCondition(cond, facts)
			trace.Conditions = append(trace.Conditions, ConditionTrace{
				Condition: cond,
				Fact:      fact,
				HasFact:   has,
				Satisfied: ok,
			})
			if !ok {
				trace.Fired = false
			}
		}
		traces = append(traces, trace)
	}

	sort.SliceStable(traces, func(i, j int) bool {
		if traces[i].Fired != traces[j].Fired {
			return traces[i].Fired
		}
		return traces[i].Rule.Priority > traces[j].Rule.Priority
	})
	return traces
}

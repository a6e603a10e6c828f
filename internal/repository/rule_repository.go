package repository

import (
	"context"
	"fmt"

	"tech-advisor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type RuleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRuleRepository(db *pgxpool.Pool, logger *zap.Logger) *RuleRepository {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

// ActiveRules returns active rules with their conditions, highest priority
// first. With a categoryID only rules for that category or for no category
// are returned.
func (r *RuleRepository) ActiveRules(ctx context.Context, categoryID *int64) ([]models.Rule, error) {
	query := squirrel.Select("id", "name", "description", "category_id", "priority", "is_active", "created_at").
		From("rules").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("priority DESC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if categoryID != nil {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"category_id": *categoryID},
			squirrel.Eq{"category_id": nil},
		})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		var rule models.Rule
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Description, &rule.CategoryID,
			&rule.Priority, &rule.IsActive, &rule.CreatedAt,
		); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachConditions(ctx, rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *RuleRepository) attachConditions(ctx context.Context, rules []models.Rule) error {
	if len(rules) == 0 {
		return nil
	}

	ids := make([]int64, len(rules))
	index := make(map[int64]int, len(rules))
	for i, rule := range rules {
		ids[i] = rule.ID
		index[rule.ID] = i
	}

	sql, args, err := squirrel.Select("id", "rule_id", "condition_type", "condition_key", "operator", "condition_value").
		From("rule_conditions").
		Where(squirrel.Eq{"rule_id": ids}).
		OrderBy("rule_id", "id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cond     models.RuleCondition
			operator string
		)
		if err := rows.Scan(&cond.ID, &cond.RuleID, &cond.Type, &cond.Key, &operator, &cond.Value); err != nil {
			return err
		}
		cond.Operator = models.ParseOperator(operator)
		if cond.Operator == models.OperatorUnknown {
			r.logger.Warn("Rule condition has unknown operator and will never match",
				zap.Int64("rule_id", cond.RuleID),
				zap.String("operator", operator),
			)
		}
		if i, ok := index[cond.RuleID]; ok {
			rules[i].Conditions = append(rules[i].Conditions, cond)
		}
	}
	return rows.Err()
}

// ReplaceRule deletes any rule with the same name and inserts rule with its
// conditions, filling in the generated ids.
func (r *RuleRepository) ReplaceRule(ctx context.Context, rule *models.Rule) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM rules WHERE name = $1", rule.Name); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	sql, args, err := squirrel.Insert("rules").
		Columns("name", "description", "category_id", "priority", "is_active").
		Values(rule.Name, rule.Description, rule.CategoryID, rule.Priority, rule.IsActive).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&rule.ID, &rule.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert rule %q: %w", rule.Name, err)
	}

	for i := range rule.Conditions {
		cond := &rule.Conditions[i]
		cond.RuleID = rule.ID
		if cond.Type == "" {
			cond.Type = "user_input"
		}

		sql, args, err := squirrel.Insert("rule_conditions").
			Columns("rule_id", "condition_type", "condition_key", "operator", "condition_value").
			Values(cond.RuleID, cond.Type, cond.Key, cond.Operator.String(), cond.Value).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&cond.ID); err != nil {
			return fmt.Errorf("failed to insert condition for rule %q: %w", rule.Name, err)
		}
	}

	return tx.Commit(ctx)
}

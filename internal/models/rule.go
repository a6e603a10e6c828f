package models

import (
	"strings"
	"time"
)

// Operator is the closed set of comparisons a rule condition may use.
type Operator int

const (
	OperatorUnknown Operator = iota
	OperatorEquals
	OperatorNotEquals
	OperatorLessThan
	OperatorGreaterThan
	OperatorLessEqual
	OperatorGreaterEqual
	OperatorIn
	OperatorContains
)

var operatorNames = map[Operator]string{
	OperatorEquals:       "equals",
	OperatorNotEquals:    "not_equals",
	OperatorLessThan:     "less_than",
	OperatorGreaterThan:  "greater_than",
	OperatorLessEqual:    "less_equal",
	OperatorGreaterEqual: "greater_equal",
	OperatorIn:           "in",
	OperatorContains:     "contains",
}

// operatorAliases maps the symbolic spellings found in older rule data onto
// the canonical operators.
var operatorAliases = map[string]Operator{
	"==": OperatorEquals,
	"!=": OperatorNotEquals,
	"<":  OperatorLessThan,
	">":  OperatorGreaterThan,
	"<=": OperatorLessEqual,
	">=": OperatorGreaterEqual,
}

// ParseOperator accepts the canonical names and the symbolic aliases.
// Anything else yields OperatorUnknown.
func ParseOperator(s string) Operator {
	s = strings.ToLower(strings.TrimSpace(s))
	if op, ok := operatorAliases[s]; ok {
		return op
	}
	for op, name := range operatorNames {
		if name == s {
			return op
		}
	}
	return OperatorUnknown
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the canonical name, so rules round-trip through JSON
// and the rule cache.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	*o = ParseOperator(string(text))
	return nil
}

type RuleCondition struct {
	ID       int64    `db:"id" json:"id"`
	RuleID   int64    `db:"rule_id" json:"rule_id"`
	Type     string   `db:"condition_type" json:"condition_type"`
	Key      string   `db:"condition_key" json:"condition_key"`
	Operator Operator `db:"operator" json:"operator"`
	Value    string   `db:"condition_value" json:"condition_value"`
}

type Rule struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	CategoryID  *int64          `db:"category_id" json:"category_id"`
	Priority    int             `db:"priority" json:"priority"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	Conditions  []RuleCondition `db:"-" json:"conditions"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// AppliesTo reports whether the rule targets the given category. Rules
// without a category apply everywhere.
func (r *Rule) AppliesTo(categoryID int64) bool {
	return r.CategoryID == nil || *r.CategoryID == categoryID
}

// Explanation is the rule description, falling back to its name.
func (r *Rule) Explanation() string {
	if strings.TrimSpace(r.Description) != "" {
		return r.Description
	}
	return r.Name
}

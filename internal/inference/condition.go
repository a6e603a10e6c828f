package inference

import (
	"strconv"
	"strings"

	"tech-advisor/internal/models"
)

// EvaluateCondition tests a single condition against the facts. A missing
// fact, a value that does not coerce to a number for a numeric operator, and
// an unknown operator all evaluate to false.
func EvaluateCondition(cond models.RuleCondition, facts models.Preferences) bool {
	actual, ok := facts[cond.Key]
	if !ok {
		return false
	}
	expected := cond.Value

	switch cond.Operator {
	case models.OperatorEquals:
		return strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(expected))
	case models.OperatorNotEquals:
		return !strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(expected))
	case models.OperatorLessThan:
		return compareNumeric(actual, expected, func(a, b float64) bool { return a < b })
	case models.OperatorGreaterThan:
		return compareNumeric(actual, expected, func(a, b float64) bool { return a > b })
	case models.OperatorLessEqual:
		return compareNumeric(actual, expected, func(a, b float64) bool { return a <= b })
	case models.OperatorGreaterEqual:
		return compareNumeric(actual, expected, func(a, b float64) bool { return a >= b })
	case models.OperatorIn:
		needle := strings.ToLower(strings.TrimSpace(actual))
		for _, token := range strings.Split(expected, ",") {
			if strings.ToLower(strings.TrimSpace(token)) == needle {
				return true
			}
		}
		return false
	case models.OperatorContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	case models.OperatorUnknown:
		return false
	default:
		return false
	}
}

func compareNumeric(actual, expected string, cmp func(a, b float64) bool) bool {
	a, err := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	if err != nil {
		return false
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return false
	}
	return cmp(a, b)
}

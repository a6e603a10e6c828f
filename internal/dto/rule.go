package dto

// EvaluateRulesRequest carries raw facts for a dry run of the rule engine.
type EvaluateRulesRequest struct {
	Facts map[string]string `json:"facts" validate:"required,min=1"`
}

type ConditionTraceResponse struct {
	Type      string `json:"type"`
	Key       string `json:"key"`
	Operator  string `json:"operator"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual,omitempty"`
	HasFact   bool   `json:"has_fact"`
	Satisfied bool   `json:"satisfied"`
}

type RuleTraceResponse struct {
	ID          int64                    `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	CategoryID  *int64                   `json:"category_id"`
	Priority    int                      `json:"priority"`
	Fired       bool                     `json:"fired"`
	Conditions  []ConditionTraceResponse `json:"conditions"`
}

type EvaluateRulesResponse struct {
	FiredRules int                 `json:"fired_rules"`
	Rules      []RuleTraceResponse `json:"rules"`
}

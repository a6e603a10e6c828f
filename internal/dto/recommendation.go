package dto

type RecommendationRequest struct {
	Category        string  `json:"category" validate:"required_without=CategoryID"`
	CategoryID      int64   `json:"category_id" validate:"omitempty,gt=0"`
	Budget          float64 `json:"budget" validate:"omitempty,gt=0"`
	UsageType       string  `json:"usage_type" validate:"omitempty,oneof=gaming work study general creative business professional"`
	PreferredBrand  string  `json:"preferred_brand"`
	AdditionalNotes string  `json:"additional_notes" validate:"max=1000"`
	Limit           int     `json:"limit" validate:"omitempty,min=1,max=50"`
}

type SpecificationResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type RecommendedProduct struct {
	ID              int64                   `json:"id"`
	Name            string                  `json:"name"`
	Brand           string                  `json:"brand"`
	Category        string                  `json:"category"`
	Price           float64                 `json:"price"`
	Description     string                  `json:"description"`
	ImageURL        string                  `json:"image_url"`
	Specifications  []SpecificationResponse `json:"specifications"`
	Confidence      float64                 `json:"confidence"`
	Reasoning       string                  `json:"reasoning"`
	ReasoningPoints []string                `json:"reasoning_points"`
	MatchedRule     *string                 `json:"matched_rule"`
}

type RecommendationResponse struct {
	Products     []RecommendedProduct `json:"products"`
	TotalMatches int                  `json:"total_matches"`
	FiredRules   int                  `json:"fired_rules"`
	Message      string               `json:"message"`
}

package dto

type ComparisonRequest struct {
	Product1       int64   `query:"p1" validate:"required,gt=0"`
	Product2       int64   `query:"p2" validate:"required,gt=0,nefield=Product1"`
	Budget         float64 `query:"budget" validate:"omitempty,gt=0"`
	UsageType      string  `query:"usage_type" validate:"omitempty,oneof=gaming work study general creative business professional"`
	PreferredBrand string  `query:"preferred_brand"`
}

type ComparedProduct struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Brand          string            `json:"brand"`
	Category       string            `json:"category"`
	Price          float64           `json:"price"`
	ImageURL       string            `json:"image_url"`
	Description    string            `json:"description"`
	Pros           []string          `json:"pros"`
	Cons           []string          `json:"cons"`
	Score          float64           `json:"score"`
	Specifications map[string]string `json:"specifications"`
}

// Advantage attributes one comparison dimension. Winner is 1 or 2, or 0 for
// a tie or a dimension that does not pick a side.
type Advantage struct {
	Winner int    `json:"winner"`
	Reason string `json:"reason"`
}

type ComparisonResponse struct {
	Product1              ComparedProduct      `json:"product1"`
	Product2              ComparedProduct      `json:"product2"`
	ComparativeAdvantages map[string]Advantage `json:"comparative_advantages"`
	Winner                int                  `json:"winner"`
	WinnerReason          string               `json:"winner_reason"`
	PriceDifference       float64              `json:"price_difference"`
	SameCategory          bool                 `json:"same_category"`
}

package dto

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type BrandResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

type ProductResponse struct {
	ID             int64                   `json:"id"`
	Name           string                  `json:"name"`
	Brand          string                  `json:"brand"`
	Category       string                  `json:"category"`
	Price          float64                 `json:"price"`
	ImageURL       string                  `json:"image_url"`
	Description    string                  `json:"description"`
	Specifications []SpecificationResponse `json:"specifications"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
}

package handlers

import (
	"context"
	"strconv"
	"strings"

	"tech-advisor/internal/dto"
	"tech-advisor/internal/models"
	"tech-advisor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogReader is satisfied by *repository.CatalogRepository.
type CatalogReader interface {
	service.NameResolver
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
}

type CatalogHandler struct {
	products service.ProductCatalog
	catalog  CatalogReader
	logger   *zap.Logger
}

func NewCatalogHandler(products service.ProductCatalog, catalog CatalogReader, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products: products,
		catalog:  catalog,
		logger:   logger,
	}
}

// ListProducts godoc
// @Summary List active products
// @Description Optional category and brand names filter the list; unknown names are ignored
// @Tags catalog
// @Produce json
// @Param category query string false "Category name"
// @Param brand query string false "Brand name"
// @Success 200 {object} dto.ProductListResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	filter := models.ProductFilter{ActiveOnly: true}

	if name := strings.TrimSpace(c.Query("category")); name != "" {
		id, ok, err := h.catalog.ResolveCategoryID(ctx, name)
		if err != nil {
			h.logger.Error("Failed to resolve category", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to list products",
			})
		}
		if ok {
			filter.CategoryIDs = []int64{id}
		}
	}

	if name := strings.TrimSpace(c.Query("brand")); name != "" {
		id, ok, err := h.catalog.ResolveBrandID(ctx, name)
		if err != nil {
			h.logger.Error("Failed to resolve brand", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to list products",
			})
		}
		if ok {
			filter.BrandID = &id
		}
	}

	products, err := h.products.ListProducts(ctx, filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list products",
		})
	}

	resp := dto.ProductListResponse{
		Products: make([]dto.ProductResponse, 0, len(products)),
		Total:    len(products),
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	return c.JSON(resp)
}

// GetProduct godoc
// @Summary Get a product
// @Tags catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product ID",
		})
	}

	product, err := h.products.GetProduct(c.UserContext(), id)
	if err != nil {
		h.logger.Error("Failed to get product", zap.Int64("product_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get product",
		})
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	}

	return c.JSON(toProductResponse(product))
}

// ListCategories godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list categories",
		})
	}

	resp := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		resp = append(resp, dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description})
	}
	return c.JSON(resp)
}

// ListBrands godoc
// @Summary List brands
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.BrandResponse
// @Router /api/v1/brands [get]
func (h *CatalogHandler) ListBrands(c *fiber.Ctx) error {
	brands, err := h.catalog.ListBrands(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to list brands", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list brands",
		})
	}

	resp := make([]dto.BrandResponse, 0, len(brands))
	for _, b := range brands {
		resp = append(resp, dto.BrandResponse{ID: b.ID, Name: b.Name, LogoURL: b.LogoURL})
	}
	return c.JSON(resp)
}

func toProductResponse(p *models.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Brand:          p.BrandName,
		Category:       p.CategoryName,
		Price:          p.Price,
		ImageURL:       p.ImageURL,
		Description:    p.Description,
		Specifications: service.ToSpecResponses(p.Specifications),
	}
}

package api

import (
	"context"
	"net/http"
	"storefront-service/internal/entity"

	"github.com/labstack/echo/v4"
)

type ProductService interface {
	FindProduct(ctx context.Context, id string) (*entity.Product, error)
	ListProducts(ctx context.Context, page, limit int) ([]*entity.Product, int, error)
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
}

type ProductHandler struct {
	productService  ProductService
	categoryService CategoryService
}

func NewProductHandler(productService ProductService, categoryService CategoryService) *ProductHandler {
	return &ProductHandler{productService: productService, categoryService: categoryService}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	page, limit := paginationParams(c)

	products, total, err := h.productService.ListProducts(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	resp := productListResponse{
		Products: make([]productResponse, len(products)),
		Total:    total,
		Page:     page,
		Limit:    limit,
		HasMore:  (page-1)*limit+len(products) < total,
	}
	for i, p := range products {
		resp.Products[i] = newProductResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productService.FindProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductDetailResponse(product))
}

func (h *ProductHandler) ListCategories(c echo.Context) error {
	categories, err := h.categoryService.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]categoryResponse, len(categories))
	for i, category := range categories {
		resp[i] = newCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, resp)
}

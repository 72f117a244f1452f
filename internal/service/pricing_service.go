package service

import (
	"context"
	"errors"
	"fmt"
	"storefront-service/internal/config"
	"storefront-service/internal/entity"

	"github.com/shopspring/decimal"
)

// ProductCatalog reads current catalog state, never a cached copy.
type ProductCatalog interface {
	LoadProduct(ctx context.Context, id string) (*entity.Product, error)
	HasSufficientStock(ctx context.Context, id string, quantity int) bool
}

// PricingService turns requested lines into priced order items.
type PricingService struct {
	catalog ProductCatalog
	cfg     config.PricingConfig
}

// NewPricingService creates a new instance of PricingService.
func NewPricingService(catalog ProductCatalog, cfg config.PricingConfig) *PricingService {
	return &PricingService{catalog: catalog, cfg: cfg}
}

// PrepareLines checks every requested line against the catalog and snapshots
// name, thumbnail and price. The first failing line aborts with an *entity.ProductError.
func (s *PricingService) PrepareLines(ctx context.Context, requests []entity.OrderLineRequest) ([]entity.OrderItem, error) {
	items := make([]entity.OrderItem, 0, len(requests))
	for _, req := range requests {
		product, err := s.catalog.LoadProduct(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, entity.ErrProductNotFound) {
				return nil, entity.NewProductNotFoundError(req.ProductID)
			}
			return nil, fmt.Errorf("find product %s: %w", req.ProductID, err)
		}

		if !s.catalog.HasSufficientStock(ctx, req.ProductID, req.Quantity) {
			return nil, entity.NewInsufficientStockError(product.ID, product.Name)
		}

		items = append(items, entity.OrderItem{
			ProductID:        product.ID,
			ProductName:      product.Name,
			ProductThumbnail: product.Thumbnail,
			Price:            product.Price,
			Quantity:         req.Quantity,
		})
	}
	return items, nil
}

// ComputeTotals sums the lines and applies the shipping rule. Reaching the
// free-shipping threshold exactly waives the fee.
func (s *PricingService) ComputeTotals(items []entity.OrderItem) entity.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	shipping := s.cfg.ShippingFee
	if subtotal.GreaterThanOrEqual(s.cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	// no promotion engine yet
	discount := decimal.Zero

	return entity.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(shipping).Sub(discount),
	}
}

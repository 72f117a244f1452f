package api

import (
	"encoding/json"
	"storefront-service/internal/entity"
	"time"

	"github.com/shopspring/decimal"
)

type orderItemResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	Thumbnail string      `json:"thumbnail"`
}

type orderResponse struct {
	ID             string               `json:"id"`
	UserID         string               `json:"userId"`
	OrderNumber    string               `json:"orderNumber"`
	Items          []orderItemResponse  `json:"items"`
	Subtotal       json.Number          `json:"subtotal"`
	Shipping       json.Number          `json:"shipping"`
	Discount       json.Number          `json:"discount"`
	Total          json.Number          `json:"total"`
	Status         entity.OrderStatus   `json:"status"`
	PaymentMethod  entity.PaymentMethod `json:"paymentMethod"`
	ShippingInfo   entity.ShippingInfo  `json:"shippingInfo"`
	TrackingNumber *string              `json:"trackingNumber"`
	CreatedAt      string               `json:"createdAt"`
	UpdatedAt      string               `json:"updatedAt"`
}

type orderSummaryResponse struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Total       json.Number        `json:"total"`
	Status      entity.OrderStatus `json:"status"`
	CreatedAt   string             `json:"createdAt"`
}

type orderListResponse struct {
	Orders []orderSummaryResponse `json:"orders"`
	Total  int                    `json:"total"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
}

type productResponse struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	ShortDescription string       `json:"shortDescription"`
	Price            json.Number  `json:"price"`
	OriginalPrice    *json.Number `json:"originalPrice"`
	Images           []string     `json:"images"`
	Thumbnail        string       `json:"thumbnail"`
	CategoryID       string       `json:"categoryId"`
	Stock            int          `json:"stock"`
	SKU              string       `json:"sku"`
	Tags             []string     `json:"tags"`
	Featured         bool         `json:"featured"`
	CreatedAt        string       `json:"createdAt"`
	UpdatedAt        string       `json:"updatedAt"`
}

type productDetailResponse struct {
	productResponse
	Specifications map[string]string `json:"specifications"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	HasMore  bool              `json:"hasMore"`
}

type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// money renders a decimal as a bare JSON number without going through float64.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func newOrderResponse(order *entity.Order) orderResponse {
	items := make([]orderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = orderItemResponse{
			ID:        item.ProductID,
			Name:      item.ProductName,
			Price:     money(item.Price),
			Quantity:  item.Quantity,
			Thumbnail: item.ProductThumbnail,
		}
	}

	var tracking *string
	if order.TrackingNumber != "" {
		tracking = &order.TrackingNumber
	}

	return orderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		OrderNumber:    order.OrderNumber,
		Items:          items,
		Subtotal:       money(order.Subtotal),
		Shipping:       money(order.Shipping),
		Discount:       money(order.Discount),
		Total:          money(order.Total),
		Status:         order.Status,
		PaymentMethod:  order.PaymentMethod,
		ShippingInfo:   order.ShippingInfo,
		TrackingNumber: tracking,
		CreatedAt:      timestamp(order.CreatedAt),
		UpdatedAt:      timestamp(order.UpdatedAt),
	}
}

func newOrderListResponse(list *entity.OrderList) orderListResponse {
	orders := make([]orderSummaryResponse, len(list.Orders))
	for i, order := range list.Orders {
		orders[i] = orderSummaryResponse{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Total:       money(order.Total),
			Status:      order.Status,
			CreatedAt:   timestamp(order.CreatedAt),
		}
	}
	return orderListResponse{Orders: orders, Total: list.Total, Page: list.Page, Limit: list.Limit}
}

func newProductResponse(p *entity.Product) productResponse {
	var originalPrice *json.Number
	if p.OriginalPrice.Valid {
		n := money(p.OriginalPrice.Decimal)
		originalPrice = &n
	}

	return productResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            money(p.Price),
		OriginalPrice:    originalPrice,
		Images:           nonNil(p.Images),
		Thumbnail:        p.Thumbnail,
		CategoryID:       p.CategoryID,
		Stock:            p.Stock,
		SKU:              p.SKU,
		Tags:             nonNil(p.Tags),
		Featured:         p.Featured,
		CreatedAt:        timestamp(p.CreatedAt),
		UpdatedAt:        timestamp(p.UpdatedAt),
	}
}

func newProductDetailResponse(p *entity.Product) productDetailResponse {
	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	return productDetailResponse{productResponse: newProductResponse(p), Specifications: specs}
}

func newCategoryResponse(c *entity.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
	}
}

// nonNil renders absent lists as [] rather than null.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func newUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		CreatedAt: timestamp(u.CreatedAt),
		UpdatedAt: timestamp(u.UpdatedAt),
	}
}

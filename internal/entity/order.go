package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentATM        PaymentMethod = "atm"
	PaymentCOD        PaymentMethod = "cod"
)

// Order is an order header plus the line items it owns.
type Order struct {
	ID             string
	UserID         string
	OrderNumber    string
	Items          []OrderItem
	Subtotal       decimal.Decimal
	Shipping       decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	Status         OrderStatus
	PaymentMethod  PaymentMethod
	ShippingInfo   ShippingInfo
	TrackingNumber string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem keeps the product name, thumbnail and price as they were when the
// order was placed.
type OrderItem struct {
	ID               int64
	OrderID          string
	ProductID        string
	ProductName      string
	ProductThumbnail string
	Price            decimal.Decimal
	Quantity         int
}

// LineTotal returns price * quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ShippingInfo struct {
	RecipientName  string `json:"recipientName" validate:"required,min=1,max=100"`
	RecipientPhone string `json:"recipientPhone" validate:"required,min=10,max=20"`
	City           string `json:"city" validate:"required,max=50"`
	District       string `json:"district" validate:"required,max=50"`
	Address        string `json:"address" validate:"required,max=255"`
	PostalCode     string `json:"postalCode" validate:"required,max=10"`
}

// Totals is the priced summary of a set of line items.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

type OrderLineRequest struct {
	ProductID string `json:"id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items         []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
	ShippingInfo  ShippingInfo       `json:"shippingInfo"`
	PaymentMethod PaymentMethod      `json:"paymentMethod" validate:"required,oneof=credit_card atm cod"`
}

// OrderList is one page of a user's orders.
type OrderList struct {
	Orders []*Order
	Total  int
	Page   int
	Limit  int
}

// OrderEvent is published on the order topic after an order commits.
type OrderEvent struct {
	Type        string           `json:"type"`
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      string           `json:"user_id"`
	Items       []OrderEventItem `json:"items"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

/*
Mysql Tables

CREATE TABLE orders (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL,
	order_number VARCHAR(50) NOT NULL UNIQUE,
	subtotal DECIMAL(10,2) NOT NULL,
	...
);

CREATE TABLE order_items (
	id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	order_id VARCHAR(36) NOT NULL REFERENCES orders(id),
	product_id VARCHAR(36) NOT NULL,
	product_name VARCHAR(255) NOT NULL,
	product_thumbnail VARCHAR(500) NULL,
	price DECIMAL(10,2) NOT NULL,
	quantity INT NOT NULL
);

CREATE TABLE order_sequences (
	seq_date DATE PRIMARY KEY,
	last_value INT UNSIGNED NOT NULL
);
*/

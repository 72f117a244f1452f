package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"short_description"`
	Price            decimal.Decimal     `json:"price"`
	OriginalPrice    decimal.NullDecimal `json:"original_price"`
	Images           []string            `json:"images"`
	Thumbnail        string              `json:"thumbnail"`
	CategoryID       string              `json:"category_id"`
	Stock            int                 `json:"stock"`
	SKU              string              `json:"sku"`
	Tags             []string            `json:"tags"`
	Specifications   map[string]string   `json:"specifications"`
	Featured         bool                `json:"featured"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

/*
Schema MySQL for products table:
CREATE TABLE `products` (
  `id` varchar(36) NOT NULL,
  `name` varchar(255) NOT NULL,
  `description` text NULL,
  `short_description` varchar(500) NULL,
  `price` decimal(10,2) NOT NULL,
  `original_price` decimal(10,2) NULL,
  `images` json NULL,
  `thumbnail` varchar(500) NULL,
  `category_id` varchar(36) NULL,
  `stock` int(11) NOT NULL DEFAULT 0,
  `sku` varchar(50) NULL,
  `tags` json NULL,
  `specifications` json NULL,
  `featured` tinyint(1) NOT NULL DEFAULT 0,
  `created_at` datetime NULL,
  `updated_at` datetime NULL,
  PRIMARY KEY (`id`)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
*/

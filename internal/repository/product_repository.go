package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"storefront-service/internal/entity"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

const productColumns = `id, name, description, short_description, price, original_price, images, thumbnail,
	category_id, stock, sku, tags, specifications, featured, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	product := &entity.Product{}
	var description, shortDescription, thumbnail, categoryID, sku sql.NullString
	var images, tags, specifications []byte
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&product.ID, &product.Name, &description, &shortDescription, &product.Price, &product.OriginalPrice,
		&images, &thumbnail, &categoryID, &product.Stock, &sku, &tags, &specifications, &product.Featured,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	product.Description = description.String
	product.ShortDescription = shortDescription.String
	product.Thumbnail = thumbnail.String
	product.CategoryID = categoryID.String
	product.SKU = sku.String
	product.CreatedAt = createdAt.Time
	product.UpdatedAt = updatedAt.Time

	if err := decodeJSONColumn(images, &product.Images); err != nil {
		return nil, fmt.Errorf("decode images of product %s: %w", product.ID, err)
	}
	if err := decodeJSONColumn(tags, &product.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of product %s: %w", product.ID, err)
	}
	if err := decodeJSONColumn(specifications, &product.Specifications); err != nil {
		return nil, fmt.Errorf("decode specifications of product %s: %w", product.ID, err)
	}
	return product, nil
}

// decodeJSONColumn leaves dest untouched for NULL or empty columns.
func decodeJSONColumn(raw []byte, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// GetProductByID returns entity.ErrProductNotFound when no row matches.
func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return product, nil
}

// GetProducts returns one page of products, newest first, and the total row count.
func (r *ProductRepository) GetProducts(ctx context.Context, page, limit int) ([]*entity.Product, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

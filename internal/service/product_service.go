package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"storefront-service/internal/entity"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*entity.Product, error)
	GetProducts(ctx context.Context, page, limit int) ([]*entity.Product, int, error)
}

// ProductService answers catalog lookups through a redis read-through cache.
type ProductService struct {
	productRepo ProductRepository
	rdb         *redis.Client
	ttl         time.Duration
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productRepo ProductRepository, rdb *redis.Client, ttl time.Duration) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		rdb:         rdb,
		ttl:         ttl,
	}
}

func productCacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// FindProduct returns the product or entity.ErrProductNotFound, serving from
// the cache when it can. Catalog pages read through here.
func (p *ProductService) FindProduct(ctx context.Context, id string) (*entity.Product, error) {
	key := productCacheKey(id)
	productCache, err := p.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		// the database is the source of truth, a cache outage only costs latency
		logger.Warn().Err(err).Msgf("Error getting product %s from cache", id)
	}

	if productCache != "" {
		var product entity.Product
		if err := json.Unmarshal([]byte(productCache), &product); err == nil {
			return &product, nil
		}
		logger.Warn().Msgf("Discarding unreadable cache entry for product %s", id)
	}

	return p.LoadProduct(ctx, id)
}

// LoadProduct reads the product from the database, skipping the cache, and
// refreshes the cached copy. Order pricing and stock checks go through here.
func (p *ProductService) LoadProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := p.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.cacheProduct(ctx, product)
	return product, nil
}

func (p *ProductService) cacheProduct(ctx context.Context, product *entity.Product) {
	payload, err := json.Marshal(product)
	if err == nil {
		err = p.rdb.Set(ctx, productCacheKey(product.ID), payload, p.ttl).Err()
	}
	if err != nil {
		logger.Warn().Err(err).Msgf("Error setting product %s in cache", product.ID)
	}
}

// HasSufficientStock checks current stock in the database. It fails closed: an
// unknown product or a lookup error reports false.
func (p *ProductService) HasSufficientStock(ctx context.Context, id string, quantity int) bool {
	product, err := p.LoadProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, entity.ErrProductNotFound) {
			logger.Error().Err(err).Msgf("Error checking stock for product %s", id)
		}
		return false
	}
	return product.Stock >= quantity
}

// InvalidateProducts drops cached entries so the next lookup sees current stock.
func (p *ProductService) InvalidateProducts(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productCacheKey(id)
	}
	return p.rdb.Del(ctx, keys...).Err()
}

func (p *ProductService) ListProducts(ctx context.Context, page, limit int) ([]*entity.Product, int, error) {
	products, total, err := p.productRepo.GetProducts(ctx, page, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, 0, err
	}
	return products, total, nil
}

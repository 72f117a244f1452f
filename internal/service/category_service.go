package service

import (
	"context"
	"encoding/json"
	"errors"
	"storefront-service/internal/entity"
	"time"

	"github.com/go-redis/redis/v8"
)

const categoriesCacheKey = "categories"

type CategoryRepository interface {
	GetCategories(ctx context.Context) ([]*entity.Category, error)
}

// CategoryService lists catalog categories, cached in redis as one entry.
type CategoryService struct {
	categoryRepo CategoryRepository
	rdb          *redis.Client
	ttl          time.Duration
}

func NewCategoryService(categoryRepo CategoryRepository, rdb *redis.Client, ttl time.Duration) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		rdb:          rdb,
		ttl:          ttl,
	}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	cached, err := s.rdb.Get(ctx, categoriesCacheKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Msg("Error getting categories from cache")
	}
	if cached != "" {
		var categories []*entity.Category
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			return categories, nil
		}
		logger.Warn().Msg("Discarding unreadable categories cache entry")
	}

	categories, err := s.categoryRepo.GetCategories(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting categories")
		return nil, err
	}

	payload, err := json.Marshal(categories)
	if err == nil {
		err = s.rdb.Set(ctx, categoriesCacheKey, payload, s.ttl).Err()
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Error setting categories in cache")
	}
	return categories, nil
}

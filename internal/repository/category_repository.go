package repository

import (
	"context"
	"database/sql"
	"fmt"
	"storefront-service/internal/entity"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db}
}

// GetCategories returns every category ordered by name.
func (r *CategoryRepository) GetCategories(ctx context.Context) ([]*entity.Category, error) {
	query := `SELECT id, name, slug, description, icon, created_at, updated_at FROM categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []*entity.Category{}
	for rows.Next() {
		category := &entity.Category{}
		var description, icon sql.NullString
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &description, &icon, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		category.Description = description.String
		category.Icon = icon.String
		category.CreatedAt = createdAt.Time
		category.UpdatedAt = updatedAt.Time
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

package repository

import (
	"context"
	"strings"

	"pressroom/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) (int64, error)
}

type categoryRepository struct {
	store *Store[models.Category]
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{store: NewStore[models.Category](db)}
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return r.store.FindOne(ctx, map[string]interface{}{"id": id})
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.store.FindOne(ctx, map[string]interface{}{"name": strings.TrimSpace(name)})
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	return r.store.FindAll(ctx, nil)
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	return r.store.Insert(ctx, category)
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.store.Update(ctx, category)
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) (int64, error) {
	return r.store.DeleteWhere(ctx, map[string]interface{}{"id": id})
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pressroom/internal/cache"
	"pressroom/internal/models"
	"pressroom/internal/repository"
	"pressroom/internal/validation"

	"gorm.io/gorm"
)

const (
	categoryListCacheKey = "pressroom:categories:list"
	categoryListTTL      = 5 * time.Minute
)

// CategoryService implements category use cases.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// ListCategories returns all categories, cache-aside through Redis.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if cache.GetJSON(ctx, categoryListCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, models.NewDependencyError(err)
	}

	cache.SetJSON(ctx, categoryListCacheKey, categories, categoryListTTL)
	return categories, nil
}

// GetCategory returns one category by ID.
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", id)
		}
		return nil, models.NewDependencyError(err)
	}
	return category, nil
}

// CreateCategory creates a category. Duplicate names conflict.
func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	name = strings.TrimSpace(name)

	if _, err := s.categoryRepo.GetByName(ctx, name); err == nil {
		return nil, models.NewConflictError("Category with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewDependencyError(err)
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, models.NewDependencyError(err)
	}

	cache.Invalidate(ctx, categoryListCacheKey)
	return category, nil
}

// UpdateCategory renames a category. Duplicate names conflict.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	name = strings.TrimSpace(name)

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.categoryRepo.GetByName(ctx, name); err == nil && existing.ID != id {
		return nil, models.NewConflictError("Category with this name already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewDependencyError(err)
	}

	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, models.NewDependencyError(err)
	}

	cache.Invalidate(ctx, categoryListCacheKey)
	return category, nil
}

// DeleteCategory removes an empty category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	affected, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return models.NewDependencyError(err)
	}
	if affected == 0 {
		return models.NewNotFoundError("Category", id)
	}

	cache.Invalidate(ctx, categoryListCacheKey)
	return nil
}

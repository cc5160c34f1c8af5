package service

import (
	"context"
	"testing"

	"pressroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := noopCategoryRepo()
		repo.createFn = func(_ context.Context, c *models.Category) error {
			c.ID = 3
			return nil
		}
		svc := NewCategoryService(repo)

		category, err := svc.CreateCategory(ctx, "  Economy  ")
		require.NoError(t, err)
		assert.Equal(t, uint(3), category.ID)
		assert.Equal(t, "Economy", category.Name)
	})

	t.Run("Duplicate Name Conflicts", func(t *testing.T) {
		repo := noopCategoryRepo()
		repo.getByNameFn = func(_ context.Context, name string) (*models.Category, error) {
			return &models.Category{ID: 1, Name: name}, nil
		}
		svc := NewCategoryService(repo)

		_, err := svc.CreateCategory(ctx, "Economy")
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("Empty Name Rejected", func(t *testing.T) {
		svc := NewCategoryService(noopCategoryRepo())
		_, err := svc.CreateCategory(ctx, "   ")
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}

func TestCategoryService_GetCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		svc := NewCategoryService(noopCategoryRepo())
		category, err := svc.GetCategory(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, uint(2), category.ID)
	})

	t.Run("Not Found", func(t *testing.T) {
		repo := noopCategoryRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewCategoryService(repo)
		_, err := svc.GetCategory(ctx, 2)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("Rename To Taken Name Conflicts", func(t *testing.T) {
		repo := noopCategoryRepo()
		repo.getByNameFn = func(_ context.Context, name string) (*models.Category, error) {
			return &models.Category{ID: 8, Name: name}, nil
		}
		svc := NewCategoryService(repo)
		_, err := svc.UpdateCategory(ctx, 2, "Taken")
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("Rename To Own Name Allowed", func(t *testing.T) {
		repo := noopCategoryRepo()
		repo.getByNameFn = func(_ context.Context, name string) (*models.Category, error) {
			return &models.Category{ID: 2, Name: name}, nil
		}
		svc := NewCategoryService(repo)
		category, err := svc.UpdateCategory(ctx, 2, "Same")
		require.NoError(t, err)
		assert.Equal(t, "Same", category.Name)
	})
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := NewCategoryService(noopCategoryRepo())
		assert.NoError(t, svc.DeleteCategory(ctx, 2))
	})

	t.Run("Not Found", func(t *testing.T) {
		repo := noopCategoryRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewCategoryService(repo)
		err := svc.DeleteCategory(ctx, 2)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"strings"

	"pressroom/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	store *Store[models.User]
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{store: NewStore[models.User](db)}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.store.FindOne(ctx, map[string]interface{}{"id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.store.FindOne(ctx, map[string]interface{}{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.store.Insert(ctx, user)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.store.Update(ctx, user)
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"unique;not null;index" json:"email"`
	HashedPassword string    `gorm:"not null" json:"-"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Articles       []Article `gorm:"foreignKey:UserID" json:"articles,omitempty"`
}

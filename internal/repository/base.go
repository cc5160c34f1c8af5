// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// queryTimeout bounds every database round trip so a hung connection
// cannot stall a request indefinitely.
const queryTimeout = 5 * time.Second

func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// Store is a generic record accessor keyed by column filter maps.
// Filter keys are column names; values are matched with equality.
type Store[M any] struct {
	db *gorm.DB
}

// NewStore creates a generic store bound to db.
func NewStore[M any](db *gorm.DB) *Store[M] {
	return &Store[M]{db: db}
}

// DB exposes the underlying connection for model-specific repositories
// that embed the store.
func (s *Store[M]) DB() *gorm.DB {
	return s.db
}

func applyFilters(db *gorm.DB, filters map[string]interface{}) *gorm.DB {
	for column, value := range filters {
		db = db.Where(fmt.Sprintf("%s = ?", column), value)
	}
	return db
}

// FindOne returns the single record matching filters.
// Returns gorm.ErrRecordNotFound when no row matches.
func (s *Store[M]) FindOne(ctx context.Context, filters map[string]interface{}) (*M, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var record M
	err := applyFilters(s.db.WithContext(ctx), filters).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAll returns every record matching filters, ordered by id ascending.
func (s *Store[M]) FindAll(ctx context.Context, filters map[string]interface{}) ([]M, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var records []M
	err := applyFilters(s.db.WithContext(ctx), filters).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Insert persists record and backfills generated fields.
func (s *Store[M]) Insert(ctx context.Context, record *M) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Create(record).Error
}

// Update saves all fields of record.
func (s *Store[M]) Update(ctx context.Context, record *M) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Save(record).Error
}

// DeleteWhere removes all records matching filters and reports how many
// rows were affected. An empty filter map is rejected to guard against
// wiping a table by accident.
func (s *Store[M]) DeleteWhere(ctx context.Context, filters map[string]interface{}) (int64, error) {
	if len(filters) == 0 {
		return 0, fmt.Errorf("refusing to delete without filters")
	}
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var model M
	result := applyFilters(s.db.WithContext(ctx), filters).Delete(&model)
	return result.RowsAffected, result.Error
}

// Count returns the number of records matching filters.
func (s *Store[M]) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var model M
	var count int64
	err := applyFilters(s.db.WithContext(ctx).Model(&model), filters).Count(&count).Error
	return count, err
}

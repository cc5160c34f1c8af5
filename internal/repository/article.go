package repository

import (
	"context"
	"time"

	"pressroom/internal/models"

	"gorm.io/gorm"
)

// PageQuery describes a paginated article listing request. Zero-valued
// optional filters are ignored.
type PageQuery struct {
	Page       int
	PageSize   int
	Search     string
	CategoryID uint
	UserID     uint
}

// ArticleRepository defines persistence operations for articles and their
// archive copies.
type ArticleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	Page(ctx context.Context, q PageQuery) ([]models.Article, int64, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Archive(ctx context.Context, id uint) error
	GetArchivedByOriginalID(ctx context.Context, originalID uint) (*models.DeletedArticle, error)
}

type articleRepository struct {
	db    *gorm.DB
	store *Store[models.Article]
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db, store: NewStore[models.Article](db)}
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		First(&article, id).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// applySearch adds the full-text predicate. PostgreSQL gets real FTS;
// other dialects (sqlite in tests) fall back to case-insensitive LIKE.
func (r *articleRepository) applySearch(db *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return db
	}
	if r.db.Dialector.Name() == "postgres" {
		return db.Where(
			"to_tsvector('russian', title || ' ' || content) @@ plainto_tsquery('russian', ?)",
			search,
		)
	}
	like := "%" + search + "%"
	return db.Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", like, like)
}

func (r *articleRepository) pageFilters(db *gorm.DB, q PageQuery) *gorm.DB {
	if q.CategoryID != 0 {
		db = db.Where("category_id = ?", q.CategoryID)
	}
	if q.UserID != 0 {
		db = db.Where("user_id = ?", q.UserID)
	}
	return r.applySearch(db, q.Search)
}

// Page returns one page of articles plus the total count over the same
// predicate. The count runs before the page fetch so total always covers
// the filtered set, not the slice.
func (r *articleRepository) Page(ctx context.Context, q PageQuery) ([]models.Article, int64, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var total int64
	countQ := r.pageFilters(r.db.WithContext(ctx).Model(&models.Article{}), q)
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []models.Article
	offset := (q.Page - 1) * q.PageSize
	err := r.pageFilters(r.db.WithContext(ctx), q).
		Preload("Category").
		Preload("User").
		Order("id ASC").
		Limit(q.PageSize).
		Offset(offset).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.store.Insert(ctx, article)
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	return r.store.Update(ctx, article)
}

// Archive copies the article into deleted_articles and removes the
// original inside one transaction. If either step fails the article is
// left untouched. Returns gorm.ErrRecordNotFound when the article does
// not exist.
func (r *articleRepository) Archive(ctx context.Context, id uint) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, id).Error; err != nil {
			return err
		}

		archived := models.DeletedArticle{
			OriginalID: article.ID,
			Title:      article.Title,
			Content:    article.Content,
			ImageURL:   article.ImageURL,
			CategoryID: article.CategoryID,
			UserID:     article.UserID,
			CreatedAt:  article.CreatedAt,
			UpdatedAt:  article.UpdatedAt,
			DeletedAt:  time.Now().UTC(),
		}
		if err := tx.Create(&archived).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Article{}, id).Error
	})
}

func (r *articleRepository) GetArchivedByOriginalID(ctx context.Context, originalID uint) (*models.DeletedArticle, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var archived models.DeletedArticle
	err := r.db.WithContext(ctx).
		Where("original_id = ?", originalID).
		Order("deleted_at DESC").
		First(&archived).Error
	if err != nil {
		return nil, err
	}
	return &archived, nil
}

// Package service contains the application business logic.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strings"

	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/repository"
	"pressroom/internal/storage"
	"pressroom/internal/validation"

	_ "golang.org/x/image/webp" // Register WebP decoder

	"gorm.io/gorm"
)

const maxImageSizeBytes = 10 * 1024 * 1024

// ImageUpload is an optional image attached to a create or update request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CreateArticleInput carries the fields for a new article.
type CreateArticleInput struct {
	UserID     uint
	Title      string
	Content    string
	CategoryID uint
	Image      *ImageUpload
}

// UpdateArticleInput carries a partial article update. Nil fields are
// left untouched.
type UpdateArticleInput struct {
	UserID     uint
	ArticleID  uint
	Title      *string
	Content    *string
	CategoryID *uint
	Image      *ImageUpload
}

// ListArticlesInput is a validated paginated listing request.
type ListArticlesInput struct {
	Page       int
	PageSize   int
	Search     string
	CategoryID uint
	UserID     uint
}

// ArticleService implements article use cases on top of the repositories.
type ArticleService struct {
	articleRepo  repository.ArticleRepository
	categoryRepo repository.CategoryRepository
	storage      storage.ObjectStorage
}

// NewArticleService creates a new ArticleService.
func NewArticleService(
	articleRepo repository.ArticleRepository,
	categoryRepo repository.CategoryRepository,
	store storage.ObjectStorage,
) *ArticleService {
	return &ArticleService{
		articleRepo:  articleRepo,
		categoryRepo: categoryRepo,
		storage:      store,
	}
}

// GetArticle returns the article or NotFound. Archived articles are not
// reachable here; reads never distinguish archived from never-existed.
func (s *ArticleService) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err == nil {
		return article, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewDependencyError(err)
	}
	return nil, models.NewNotFoundError("Article", id)
}

// missingArticleError distinguishes never-existed from archived. Only the
// delete path uses it; reads and updates report a plain NotFound.
func (s *ArticleService) missingArticleError(ctx context.Context, id uint) error {
	if _, archiveErr := s.articleRepo.GetArchivedByOriginalID(ctx, id); archiveErr == nil {
		return models.NewGoneError(fmt.Sprintf("Article with ID %d has been deleted", id))
	}
	return models.NewNotFoundError("Article", id)
}

// ListArticles returns one page of articles with pagination metadata.
func (s *ArticleService) ListArticles(ctx context.Context, in ListArticlesInput) (*models.ArticlePage, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PageSize < 1 {
		in.PageSize = 10
	}
	if in.PageSize > 100 {
		in.PageSize = 100
	}

	items, total, err := s.articleRepo.Page(ctx, repository.PageQuery{
		Page:       in.Page,
		PageSize:   in.PageSize,
		Search:     strings.TrimSpace(in.Search),
		CategoryID: in.CategoryID,
		UserID:     in.UserID,
	})
	if err != nil {
		return nil, models.NewDependencyError(err)
	}

	totalPages := int((total + int64(in.PageSize) - 1) / int64(in.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	return &models.ArticlePage{
		Items:      items,
		Total:      total,
		Page:       in.Page,
		PageSize:   in.PageSize,
		TotalPages: totalPages,
		HasNext:    in.Page < totalPages,
		HasPrev:    in.Page > 1,
	}, nil
}

// CreateArticle validates input, stores the optional image, and persists
// the article. The image upload runs first; if the database insert fails
// afterwards the uploaded object is removed again.
func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	if err := validation.ValidateArticleTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateArticleContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", in.CategoryID)
		}
		return nil, models.NewDependencyError(err)
	}

	imageURL := ""
	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.UserID, in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	article := &models.Article{
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		ImageURL:   imageURL,
		CategoryID: in.CategoryID,
		UserID:     in.UserID,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		if imageURL != "" {
			if removeErr := s.storage.Remove(ctx, imageURL); removeErr != nil {
				middleware.Logger.Error("Failed to remove orphaned image after create failure",
					slog.String("image_url", imageURL),
					slog.String("error", removeErr.Error()),
				)
			}
		}
		return nil, models.NewDependencyError(err)
	}

	return s.GetArticle(ctx, article.ID)
}

// UpdateArticle applies a partial update after checking existence and
// ownership, in that order. A replaced image is deleted from storage on
// a best-effort basis.
func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", in.ArticleID)
		}
		return nil, models.NewDependencyError(err)
	}
	if article.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own articles")
	}

	if in.Title != nil {
		if err := validation.ValidateArticleTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		article.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		if err := validation.ValidateArticleContent(*in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		article.Content = *in.Content
	}
	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Category", *in.CategoryID)
			}
			return nil, models.NewDependencyError(err)
		}
		article.CategoryID = *in.CategoryID
	}

	oldImageURL := ""
	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.UserID, in.Image)
		if err != nil {
			return nil, err
		}
		oldImageURL = article.ImageURL
		article.ImageURL = url
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		if in.Image != nil {
			if removeErr := s.storage.Remove(ctx, article.ImageURL); removeErr != nil {
				middleware.Logger.Error("Failed to remove orphaned image after update failure",
					slog.String("image_url", article.ImageURL),
					slog.String("error", removeErr.Error()),
				)
			}
		}
		return nil, models.NewDependencyError(err)
	}

	if oldImageURL != "" {
		if removeErr := s.storage.Remove(ctx, oldImageURL); removeErr != nil {
			middleware.Logger.Warn("Failed to remove replaced image",
				slog.String("image_url", oldImageURL),
				slog.String("error", removeErr.Error()),
			)
		}
	}

	return s.GetArticle(ctx, article.ID)
}

// DeleteArticle archives the article after checking existence and
// ownership. Repeat deletes report Gone. The image object stays in
// storage so the archive copy's image_url remains resolvable.
func (s *ArticleService) DeleteArticle(ctx context.Context, userID, articleID uint) error {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.missingArticleError(ctx, articleID)
		}
		return models.NewDependencyError(err)
	}
	if article.UserID != userID {
		return models.NewForbiddenError("You can only delete your own articles")
	}

	if err := s.articleRepo.Archive(ctx, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost a race with another delete of the same article.
			return s.missingArticleError(ctx, articleID)
		}
		return models.NewDependencyError(err)
	}

	middleware.ArticlesArchived.Inc()
	return nil
}

func (s *ArticleService) uploadImage(ctx context.Context, userID uint, upload *ImageUpload) (string, error) {
	if len(upload.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if len(upload.Content) > maxImageSizeBytes {
		return "", models.NewValidationError("File too large (max 10MB)")
	}

	detectedType := http.DetectContentType(upload.Content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}
	if _, _, err := image.Decode(bytes.NewReader(upload.Content)); err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	url, err := s.storage.Upload(ctx, userID, upload.Filename, detectedType, upload.Content)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", models.NewInternalError(err)
	}
	return url, nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

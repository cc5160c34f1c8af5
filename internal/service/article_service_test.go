package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"pressroom/internal/models"
	"pressroom/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.Article, error)
	pageFn          func(context.Context, repository.PageQuery) ([]models.Article, int64, error)
	createFn        func(context.Context, *models.Article) error
	updateFn        func(context.Context, *models.Article) error
	archiveFn       func(context.Context, uint) error
	getArchivedFn   func(context.Context, uint) (*models.DeletedArticle, error)
	archivedCalls   int
	removedArticles []uint
}

func (s *articleRepoStub) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	return s.getByIDFn(ctx, id)
}
func (s *articleRepoStub) Page(ctx context.Context, q repository.PageQuery) ([]models.Article, int64, error) {
	return s.pageFn(ctx, q)
}
func (s *articleRepoStub) Create(ctx context.Context, article *models.Article) error {
	return s.createFn(ctx, article)
}
func (s *articleRepoStub) Update(ctx context.Context, article *models.Article) error {
	return s.updateFn(ctx, article)
}
func (s *articleRepoStub) Archive(ctx context.Context, id uint) error {
	s.archivedCalls++
	s.removedArticles = append(s.removedArticles, id)
	return s.archiveFn(ctx, id)
}
func (s *articleRepoStub) GetArchivedByOriginalID(ctx context.Context, originalID uint) (*models.DeletedArticle, error) {
	return s.getArchivedFn(ctx, originalID)
}

func noopArticleRepo() *articleRepoStub {
	return &articleRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Article, error) {
			return &models.Article{ID: id, UserID: 1, CategoryID: 1, Title: "t", Content: "c"}, nil
		},
		pageFn: func(_ context.Context, _ repository.PageQuery) ([]models.Article, int64, error) {
			return nil, 0, nil
		},
		createFn: func(_ context.Context, _ *models.Article) error { return nil },
		updateFn: func(_ context.Context, _ *models.Article) error { return nil },
		archiveFn: func(_ context.Context, _ uint) error { return nil },
		getArchivedFn: func(_ context.Context, _ uint) (*models.DeletedArticle, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	getByIDFn   func(context.Context, uint) (*models.Category, error)
	getByNameFn func(context.Context, string) (*models.Category, error)
	listFn      func(context.Context) ([]models.Category, error)
	createFn    func(context.Context, *models.Category) error
	updateFn    func(context.Context, *models.Category) error
	deleteFn    func(context.Context, uint) (int64, error)
}

func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return s.getByNameFn(ctx, name)
}
func (s *categoryRepoStub) List(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) Update(ctx context.Context, category *models.Category) error {
	return s.updateFn(ctx, category)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) (int64, error) {
	return s.deleteFn(ctx, id)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "Politics"}, nil
		},
		getByNameFn: func(_ context.Context, _ string) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listFn:   func(_ context.Context) ([]models.Category, error) { return nil, nil },
		createFn: func(_ context.Context, _ *models.Category) error { return nil },
		updateFn: func(_ context.Context, _ *models.Category) error { return nil },
		deleteFn: func(_ context.Context, _ uint) (int64, error) { return 1, nil },
	}
}

// storageStub is a stub for storage.ObjectStorage.
type storageStub struct {
	uploadFn func(context.Context, uint, string, string, []byte) (string, error)
	removeFn func(context.Context, string) error
	uploads  []string
	removals []string
}

func (s *storageStub) Upload(ctx context.Context, userID uint, filename, contentType string, content []byte) (string, error) {
	url, err := s.uploadFn(ctx, userID, filename, contentType, content)
	if err == nil {
		s.uploads = append(s.uploads, url)
	}
	return url, err
}

func (s *storageStub) Remove(ctx context.Context, objectURL string) error {
	s.removals = append(s.removals, objectURL)
	return s.removeFn(ctx, objectURL)
}

func noopStorage() *storageStub {
	return &storageStub{
		uploadFn: func(_ context.Context, _ uint, _, _ string, _ []byte) (string, error) {
			return "http://storage/bucket/articles/1/new.png", nil
		},
		removeFn: func(_ context.Context, _ string) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// pngBytes returns a tiny valid PNG payload.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestArticleService_GetArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		svc := NewArticleService(noopArticleRepo(), noopCategoryRepo(), noopStorage())
		article, err := svc.GetArticle(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, uint(7), article.ID)
	})

	t.Run("Never Existed", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		_, err := svc.GetArticle(ctx, 7)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("Timed Out Lookup Reports Unavailable", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
			return nil, context.DeadlineExceeded
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		_, err := svc.GetArticle(ctx, 7)
		assertAppErrorCode(t, err, models.CodeUnavailable)
	})

	t.Run("Archived Looks Absent", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
			return nil, gorm.ErrRecordNotFound
		}
		repo.getArchivedFn = func(_ context.Context, id uint) (*models.DeletedArticle, error) {
			return &models.DeletedArticle{OriginalID: id}, nil
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		_, err := svc.GetArticle(ctx, 7)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestArticleService_ListArticles_PaginationMath(t *testing.T) {
	ctx := context.Background()

	makeService := func(total int64) *ArticleService {
		repo := noopArticleRepo()
		repo.pageFn = func(_ context.Context, q repository.PageQuery) ([]models.Article, int64, error) {
			n := int(total) - (q.Page-1)*q.PageSize
			if n < 0 {
				n = 0
			}
			if n > q.PageSize {
				n = q.PageSize
			}
			return make([]models.Article, n), total, nil
		}
		return NewArticleService(repo, noopCategoryRepo(), noopStorage())
	}

	tests := []struct {
		name           string
		total          int64
		page, pageSize int
		wantItems      int
		wantTotalPages int
		wantHasNext    bool
		wantHasPrev    bool
	}{
		{"First Of Two", 6, 1, 3, 3, 2, true, false},
		{"Last Of Two", 6, 2, 3, 3, 2, false, true},
		{"Partial Last Page", 7, 3, 3, 1, 3, false, true},
		{"Beyond End", 6, 5, 3, 0, 2, false, true},
		{"Empty Set Has One Page", 0, 1, 3, 0, 1, false, false},
		{"Single Page", 2, 1, 10, 2, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := makeService(tt.total).ListArticles(ctx, ListArticlesInput{Page: tt.page, PageSize: tt.pageSize})
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)
			assert.Equal(t, tt.wantHasNext, page.HasNext)
			assert.Equal(t, tt.wantHasPrev, page.HasPrev)
		})
	}
}

func TestArticleService_ListArticles_ClampsInput(t *testing.T) {
	repo := noopArticleRepo()
	var got repository.PageQuery
	repo.pageFn = func(_ context.Context, q repository.PageQuery) ([]models.Article, int64, error) {
		got = q
		return nil, 0, nil
	}
	svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())

	_, err := svc.ListArticles(context.Background(), ListArticlesInput{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 100, got.PageSize)
}

func TestArticleService_CreateArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Without Image", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.createFn = func(_ context.Context, a *models.Article) error {
			a.ID = 11
			return nil
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())

		article, err := svc.CreateArticle(ctx, CreateArticleInput{
			UserID: 1, Title: "Headline", Content: "Body", CategoryID: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(11), article.ID)
	})

	t.Run("Missing Title", func(t *testing.T) {
		svc := NewArticleService(noopArticleRepo(), noopCategoryRepo(), noopStorage())
		_, err := svc.CreateArticle(ctx, CreateArticleInput{UserID: 1, Content: "Body", CategoryID: 2})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("Unknown Category", func(t *testing.T) {
		categories := noopCategoryRepo()
		categories.getByIDFn = func(_ context.Context, _ uint) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewArticleService(noopArticleRepo(), categories, noopStorage())
		_, err := svc.CreateArticle(ctx, CreateArticleInput{UserID: 1, Title: "T", Content: "C", CategoryID: 9})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("Rejects Non Image Payload", func(t *testing.T) {
		svc := NewArticleService(noopArticleRepo(), noopCategoryRepo(), noopStorage())
		_, err := svc.CreateArticle(ctx, CreateArticleInput{
			UserID: 1, Title: "T", Content: "C", CategoryID: 2,
			Image: &ImageUpload{Filename: "a.png", Content: []byte("not an image")},
		})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("Removes Uploaded Image When Insert Fails", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.createFn = func(_ context.Context, _ *models.Article) error {
			return errors.New("insert failed")
		}
		store := noopStorage()
		svc := NewArticleService(repo, noopCategoryRepo(), store)

		_, err := svc.CreateArticle(ctx, CreateArticleInput{
			UserID: 1, Title: "T", Content: "C", CategoryID: 2,
			Image: &ImageUpload{Filename: "a.png", Content: pngBytes(t)},
		})
		assertAppErrorCode(t, err, models.CodeInternal)
		require.Len(t, store.uploads, 1)
		require.Len(t, store.removals, 1)
		assert.Equal(t, store.uploads[0], store.removals[0])
	})
}

func TestArticleService_UpdateArticle(t *testing.T) {
	ctx := context.Background()
	title := "New title"

	t.Run("Not Found Beats Forbidden", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		_, err := svc.UpdateArticle(ctx, UpdateArticleInput{UserID: 99, ArticleID: 1, Title: &title})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("Foreign Article Forbidden", func(t *testing.T) {
		svc := NewArticleService(noopArticleRepo(), noopCategoryRepo(), noopStorage())
		_, err := svc.UpdateArticle(ctx, UpdateArticleInput{UserID: 99, ArticleID: 1, Title: &title})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("Partial Update Keeps Other Fields", func(t *testing.T) {
		repo := noopArticleRepo()
		var saved *models.Article
		repo.updateFn = func(_ context.Context, a *models.Article) error {
			saved = a
			return nil
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())

		_, err := svc.UpdateArticle(ctx, UpdateArticleInput{UserID: 1, ArticleID: 1, Title: &title})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "New title", saved.Title)
		assert.Equal(t, "c", saved.Content)
	})

	t.Run("Removes Uploaded Image When Update Fails", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.updateFn = func(_ context.Context, _ *models.Article) error {
			return assert.AnError
		}
		store := noopStorage()
		svc := NewArticleService(repo, noopCategoryRepo(), store)

		_, err := svc.UpdateArticle(ctx, UpdateArticleInput{
			UserID: 1, ArticleID: 1,
			Image: &ImageUpload{Filename: "b.png", Content: pngBytes(t)},
		})
		assertAppErrorCode(t, err, models.CodeInternal)
		require.Len(t, store.uploads, 1)
		require.Len(t, store.removals, 1)
		assert.Equal(t, store.uploads[0], store.removals[0])
	})

	t.Run("Replaced Image Removed Best Effort", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
			return &models.Article{ID: id, UserID: 1, CategoryID: 1, Title: "t", Content: "c",
				ImageURL: "http://storage/bucket/articles/1/old.png"}, nil
		}
		store := noopStorage()
		svc := NewArticleService(repo, noopCategoryRepo(), store)

		_, err := svc.UpdateArticle(ctx, UpdateArticleInput{
			UserID: 1, ArticleID: 1,
			Image: &ImageUpload{Filename: "b.png", Content: pngBytes(t)},
		})
		require.NoError(t, err)
		require.Len(t, store.removals, 1)
		assert.Equal(t, "http://storage/bucket/articles/1/old.png", store.removals[0])
	})
}

func TestArticleService_DeleteArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Archives", func(t *testing.T) {
		repo := noopArticleRepo()
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		require.NoError(t, svc.DeleteArticle(ctx, 1, 5))
		assert.Equal(t, 1, repo.archivedCalls)
		assert.Equal(t, []uint{5}, repo.removedArticles)
	})

	t.Run("Image Object Survives Archiving", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
			return &models.Article{ID: id, UserID: 1,
				ImageURL: "http://storage/bucket/articles/1/keep.png"}, nil
		}
		store := noopStorage()
		svc := NewArticleService(repo, noopCategoryRepo(), store)
		require.NoError(t, svc.DeleteArticle(ctx, 1, 5))
		assert.Empty(t, store.removals)
	})

	t.Run("Foreign Article Forbidden", func(t *testing.T) {
		repo := noopArticleRepo()
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		err := svc.DeleteArticle(ctx, 99, 5)
		assertAppErrorCode(t, err, models.CodeForbidden)
		assert.Zero(t, repo.archivedCalls)
	})

	t.Run("Repeat Delete Reports Gone", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
			return nil, gorm.ErrRecordNotFound
		}
		repo.getArchivedFn = func(_ context.Context, id uint) (*models.DeletedArticle, error) {
			return &models.DeletedArticle{OriginalID: id}, nil
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		err := svc.DeleteArticle(ctx, 1, 5)
		assertAppErrorCode(t, err, models.CodeGone)
	})

	t.Run("Never Existed Not Found", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewArticleService(repo, noopCategoryRepo(), noopStorage())
		err := svc.DeleteArticle(ctx, 1, 5)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"pressroom/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumArticles int
	ShouldClean bool
}

var categoryNames = []string{
	"Politics", "Economy", "Sports", "Culture", "Science",
	"Technology", "Society", "World", "Health", "Opinion",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with the shared test password "password123".
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          gofakeit.Email(),
		HashedPassword: string(hashed),
		IsActive:       true,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateCategory persists a category with the given name.
func (f *Factory) CreateCategory(name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := f.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return category, nil
}

// BuildArticle constructs an article without persisting it. Useful for
// batching.
func (f *Factory) BuildArticle(user *models.User, category *models.Category, overrides ...func(*models.Article)) *models.Article {
	article := &models.Article{
		Title:      gofakeit.Sentence(6),
		Content:    gofakeit.Paragraph(3, 5, 12, "\n\n"),
		CategoryID: category.ID,
		UserID:     user.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	article.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	article.UpdatedAt = article.CreatedAt

	if f.r.Intn(3) == 0 {
		article.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(article)
	}
	return article
}

// CreateArticlesBatch persists multiple articles in a single DB call.
func (f *Factory) CreateArticlesBatch(articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	return f.db.CreateInBatches(articles, 100).Error
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d articles...", opts.NumUsers, opts.NumArticles)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	factory := NewFactory(db)

	categories := make([]*models.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		category, err := factory.CreateCategory(name)
		if err != nil {
			return err
		}
		categories = append(categories, category)
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	if opts.NumArticles > 0 && len(users) == 0 {
		return fmt.Errorf("cannot seed %d articles without any users", opts.NumArticles)
	}

	articles := make([]*models.Article, 0, opts.NumArticles)
	for i := 0; i < opts.NumArticles; i++ {
		user := users[factory.r.Intn(len(users))]
		category := categories[factory.r.Intn(len(categories))]
		articles = append(articles, factory.BuildArticle(user, category))
	}
	if err := factory.CreateArticlesBatch(articles); err != nil {
		return fmt.Errorf("failed to create articles: %w", err)
	}

	log.Printf("Seeding complete: %d categories, %d users, %d articles", len(categories), len(users), len(articles))
	return nil
}

// ClearAll truncates all seeded tables.
func ClearAll(db *gorm.DB) error {
	tables := []string{"deleted_articles", "articles", "categories", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

package models

import "time"

// Article is an authored piece of content belonging to a category and a user.
//
// Deletion moves the row into deleted_articles (see DeletedArticle); the
// active table carries no deleted flag, so normal reads can only ever see
// live articles.
type Article struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null;index" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ImageURL   string    `json:"image_url"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// DeletedArticle is the archive copy of an article, written exactly once at
// deletion time and never mutated afterwards. The category/user references
// mirror the original foreign keys; the original article row no longer
// exists once the archive copy is committed.
type DeletedArticle struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OriginalID uint      `gorm:"not null;index" json:"original_id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ImageURL   string    `json:"image_url"`
	CategoryID uint      `gorm:"not null" json:"category_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	DeletedAt  time.Time `gorm:"not null" json:"deleted_at"`
}

// ArticlePage is the paginated listing response shape.
type ArticlePage struct {
	Items      []Article `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	HasNext    bool      `json:"has_next"`
	HasPrev    bool      `json:"has_prev"`
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"size:512;not null" json:"title"`
	ISBN          string    `gorm:"column:isbn;uniqueIndex;size:32;not null" json:"isbn"`
	PublishedYear int       `gorm:"index" json:"publishedYear"`
	Description   *string   `gorm:"type:text" json:"description"`
	CoverImage    *string   `gorm:"size:1024" json:"coverImage"` // Root-relative URL under /uploads/books
	AuthorID      string    `gorm:"size:36;not null;index" json:"authorId"`
	Author        *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Book) TableName() string {
	return "books"
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BookListing is a book carrying only a summary of its author, as returned
// by collection endpoints.
type BookListing struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	ISBN          string         `json:"isbn"`
	PublishedYear int            `json:"publishedYear"`
	Description   *string        `json:"description"`
	CoverImage    *string        `json:"coverImage"`
	AuthorID      string         `json:"authorId"`
	Author        *AuthorSummary `json:"author"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Listing converts a book with a loaded author into its listing form.
func (b Book) Listing() BookListing {
	listing := BookListing{
		ID:            b.ID,
		Title:         b.Title,
		ISBN:          b.ISBN,
		PublishedYear: b.PublishedYear,
		Description:   b.Description,
		CoverImage:    b.CoverImage,
		AuthorID:      b.AuthorID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.Author != nil {
		listing.Author = &AuthorSummary{ID: b.Author.ID, Name: b.Author.Name, Email: b.Author.Email}
	}
	return listing
}

// Package books provides database operations for books.
//
// Every book references an existing author. Create and Update check the
// reference inside the same transaction as the write and report a missing
// author as a foreign-key violation on the authorId field.
package books

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const entityName = "Book"

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all books, newest first, with a summary of each author.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, translate(err)
	}
	return books, nil
}

// Get returns one book with its full author.
func (r *Repository) Get(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Preload("Author").First(&book, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

// Create inserts the book and reloads it with its author.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAuthor(tx, book.AuthorID); err != nil {
			return err
		}
		if err := tx.Omit("Author").Create(book).Error; err != nil {
			return err
		}
		return tx.Preload("Author").First(book, "id = ?", book.ID).Error
	})
	return translate(err)
}

// Update overwrites the mutable columns of the book identified by book.ID
// and reloads it with its author. With keepCover set the cover_image column
// is left as stored. It returns the cover URL the write replaced, read in
// the same transaction.
func (r *Repository) Update(ctx context.Context, book *entities.Book, keepCover bool) ([]string, error) {
	var stale []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entities.Book
		if err := tx.Select("id", "cover_image").First(&current, "id = ?", book.ID).Error; err != nil {
			return err
		}
		if err := ensureAuthor(tx, book.AuthorID); err != nil {
			return err
		}

		columns := map[string]any{
			"title":          book.Title,
			"isbn":           book.ISBN,
			"published_year": book.PublishedYear,
			"description":    book.Description,
			"author_id":      book.AuthorID,
		}
		if !keepCover {
			columns["cover_image"] = book.CoverImage
		}
		result := tx.Model(&entities.Book{}).Where("id = ?", book.ID).Updates(columns)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound(entityName)
		}
		if !keepCover {
			stale = database.ReplacedAsset(current.CoverImage, book.CoverImage)
		}

		book.Author = nil
		return tx.Preload("Author").First(book, "id = ?", book.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return stale, nil
}

// Delete removes the book and returns its cover URL, if any, so the caller
// can discard it once the transaction has committed.
func (r *Repository) Delete(ctx context.Context, id string) ([]string, error) {
	var assets []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, "id = ?", id).Error; err != nil {
			return err
		}
		if book.CoverImage != nil {
			assets = append(assets, *book.CoverImage)
		}

		result := tx.Delete(&entities.Book{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound(entityName)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return assets, nil
}

// AssetPaths returns every cover URL currently referenced by a book.
func (r *Repository) AssetPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Where("cover_image IS NOT NULL AND cover_image <> ''").
		Pluck("cover_image", &paths).Error
	if err != nil {
		return nil, translate(err)
	}
	return paths, nil
}

func ensureAuthor(tx *gorm.DB, authorID string) error {
	var count int64
	if err := tx.Model(&entities.Author{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return missingAuthor(nil)
	}
	return nil
}

func missingAuthor(cause error) *apperr.Error {
	return apperr.Persistence(apperr.ForeignKeyViolation, cause).OnField("authorId").OfEntity("Author")
}

// translate tags the error and attributes foreign-key failures that slipped
// past ensureAuthor to the author reference.
func translate(err error) error {
	err = database.TranslateErrorFor(err, entityName)

	var tagged *apperr.Error
	if errors.As(err, &tagged) && tagged.Kind == apperr.KindPersistence &&
		tagged.DBCode == apperr.ForeignKeyViolation && tagged.Field == "" {
		return missingAuthor(err)
	}
	return err
}

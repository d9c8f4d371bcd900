// Package authors provides database operations for authors.
//
// Deleting an author removes the author's books in the same transaction; the
// cascade is enforced here rather than left to schema constraints.
package authors

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const entityName = "Author"

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all authors, newest first, each with their books.
func (r *Repository) List(ctx context.Context) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("published_year DESC")
		}).
		Order("created_at DESC").
		Find(&authors).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return authors, nil
}

// Get returns one author with books ordered by publication year, latest first.
func (r *Repository) Get(ctx context.Context, id string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("published_year DESC")
		}).
		First(&author, "id = ?", id).Error
	if err != nil {
		return nil, database.TranslateErrorFor(err, entityName)
	}
	return &author, nil
}

func (r *Repository) Create(ctx context.Context, author *entities.Author) error {
	err := r.db.WithContext(ctx).Omit("Books").Create(author).Error
	return database.TranslateError(err)
}

// Update overwrites the mutable columns of the author identified by
// author.ID and reloads it with its books. With keepPhoto set the photo
// column is left as stored. It returns the photo URL the write replaced,
// read in the same transaction.
func (r *Repository) Update(ctx context.Context, author *entities.Author, keepPhoto bool) ([]string, error) {
	var stale []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entities.Author
		if err := tx.Select("id", "photo").First(&current, "id = ?", author.ID).Error; err != nil {
			return err
		}

		columns := map[string]any{
			"name":  author.Name,
			"email": author.Email,
			"bio":   author.Bio,
		}
		if !keepPhoto {
			columns["photo"] = author.Photo
		}
		result := tx.Model(&entities.Author{}).Where("id = ?", author.ID).Updates(columns)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound(entityName)
		}
		if !keepPhoto {
			stale = database.ReplacedAsset(current.Photo, author.Photo)
		}

		author.Books = nil
		return tx.Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("published_year DESC")
		}).First(author, "id = ?", author.ID).Error
	})
	if err != nil {
		return nil, database.TranslateErrorFor(err, entityName)
	}
	return stale, nil
}

// Delete removes the author and all of their books. It returns the upload
// URLs that belonged to the removed rows so the caller can discard them
// once the transaction has committed.
func (r *Repository) Delete(ctx context.Context, id string) ([]string, error) {
	var assets []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		if err := tx.Preload("Books").First(&author, "id = ?", id).Error; err != nil {
			return err
		}

		if author.Photo != nil {
			assets = append(assets, *author.Photo)
		}
		for _, book := range author.Books {
			if book.CoverImage != nil {
				assets = append(assets, *book.CoverImage)
			}
		}

		if err := tx.Where("author_id = ?", id).Delete(&entities.Book{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Author{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound(entityName)
		}
		return nil
	})
	if err != nil {
		return nil, database.TranslateErrorFor(err, entityName)
	}
	return assets, nil
}

// AssetPaths returns every photo URL currently referenced by an author.
func (r *Repository) AssetPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&entities.Author{}).
		Where("photo IS NOT NULL AND photo <> ''").
		Pluck("photo", &paths).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return paths, nil
}


package books

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := filepath.Join(t.TempDir(), "test_books.db")

	db, err := database.NewDatabase(dbPath, logger.Silent)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return NewRepository(db.DB), db.DB, cleanup
}

func createAuthor(t *testing.T, db *gorm.DB, email string) *entities.Author {
	t.Helper()
	author := &entities.Author{Name: "Author " + email, Email: email, Bio: strPtr("long bio")}
	require.NoError(t, db.Create(author).Error)
	return author
}

func strPtr(s string) *string { return &s }

func tagged(t *testing.T, err error) *apperr.Error {
	t.Helper()
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "expected tagged error, got %v", err)
	return e
}

func TestRepository_CreateLoadsAuthor(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")

	book := &entities.Book{Title: "Dune", ISBN: "978-0441013593", PublishedYear: 1965, AuthorID: author.ID}
	require.NoError(t, repo.Create(context.Background(), book))

	assert.NotEmpty(t, book.ID)
	require.NotNil(t, book.Author)
	assert.Equal(t, author.Email, book.Author.Email)
}

func TestRepository_Create_MissingAuthor(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create(context.Background(), &entities.Book{Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: "nope"})

	e := tagged(t, err)
	assert.Equal(t, apperr.ForeignKeyViolation, e.DBCode)
	assert.Equal(t, "authorId", e.Field)

	p := apperr.Resolve(err)
	assert.Equal(t, 404, p.Status)
	assert.Equal(t, "Author not found", p.Message)
}

func TestRepository_Create_DuplicateISBN(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Book{Title: "One", ISBN: "same", PublishedYear: 2000, AuthorID: author.ID}))
	err := repo.Create(ctx, &entities.Book{Title: "Two", ISBN: "same", PublishedYear: 2001, AuthorID: author.ID})

	e := tagged(t, err)
	assert.Equal(t, apperr.UniqueViolation, e.DBCode)
	assert.Equal(t, "isbn", e.Field)
}

func TestRepository_List_AuthorSummary(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Book{Title: "Old", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID, CreatedAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entities.Book{Title: "New", ISBN: "2", PublishedYear: 1990, AuthorID: author.ID}))

	books, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "New", books[0].Title)
	require.NotNil(t, books[0].Author)
	assert.Equal(t, author.Email, books[0].Author.Email)
	assert.Nil(t, books[0].Author.Bio)
}

func TestRepository_Get(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")
	ctx := context.Background()

	book := &entities.Book{Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID}
	require.NoError(t, repo.Create(ctx, book))

	got, err := repo.Get(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "long bio", *got.Author.Bio)

	_, err = repo.Get(ctx, "missing")
	e := tagged(t, err)
	assert.Equal(t, apperr.RecordNotFound, e.DBCode)
	assert.Equal(t, "Book", e.Entity)
}

func TestRepository_Update(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	first := createAuthor(t, db, "a@example.com")
	second := createAuthor(t, db, "b@example.com")
	ctx := context.Background()

	book := &entities.Book{Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: first.ID, CoverImage: strPtr("/uploads/books/x.png")}
	require.NoError(t, repo.Create(ctx, book))

	updated := &entities.Book{ID: book.ID, Title: "T2", ISBN: "2", PublishedYear: 2010, AuthorID: second.ID}
	stale, err := repo.Update(ctx, updated, false)
	require.NoError(t, err)

	assert.Equal(t, "T2", updated.Title)
	assert.Nil(t, updated.CoverImage)
	assert.Equal(t, []string{"/uploads/books/x.png"}, stale)
	require.NotNil(t, updated.Author)
	assert.Equal(t, second.ID, updated.Author.ID)
}

func TestRepository_Update_KeepCoverLeavesColumn(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")
	ctx := context.Background()

	book := &entities.Book{Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID, CoverImage: strPtr("/uploads/books/x.png")}
	require.NoError(t, repo.Create(ctx, book))
	require.NoError(t, db.Model(&entities.Book{}).Where("id = ?", book.ID).Update("cover_image", "/uploads/books/y.png").Error)

	updated := &entities.Book{ID: book.ID, Title: "T2", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID, CoverImage: strPtr("/uploads/books/x.png")}
	stale, err := repo.Update(ctx, updated, true)
	require.NoError(t, err)

	assert.Empty(t, stale)
	require.NotNil(t, updated.CoverImage)
	assert.Equal(t, "/uploads/books/y.png", *updated.CoverImage, "stored cover wins over the caller's copy")
}

func TestRepository_Update_MissingBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")

	_, err := repo.Update(context.Background(), &entities.Book{ID: "missing", Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID}, false)

	assert.Equal(t, apperr.RecordNotFound, tagged(t, err).DBCode)
}

func TestRepository_Update_MissingAuthor(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")
	ctx := context.Background()

	book := &entities.Book{Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID}
	require.NoError(t, repo.Create(ctx, book))

	_, err := repo.Update(ctx, &entities.Book{ID: book.ID, Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: "gone"}, false)

	e := tagged(t, err)
	assert.Equal(t, apperr.ForeignKeyViolation, e.DBCode)
	assert.Equal(t, "authorId", e.Field)

	got, err := repo.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.AuthorID)
}

func TestRepository_Delete(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")
	ctx := context.Background()

	book := &entities.Book{Title: "T", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID, CoverImage: strPtr("/uploads/books/c.png")}
	require.NoError(t, repo.Create(ctx, book))

	assets, err := repo.Delete(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/books/c.png"}, assets)

	_, err = repo.Delete(ctx, book.ID)
	assert.Equal(t, apperr.RecordNotFound, tagged(t, err).DBCode)
}

func TestRepository_AssetPaths(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	author := createAuthor(t, db, "a@example.com")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Book{Title: "A", ISBN: "1", PublishedYear: 2000, AuthorID: author.ID, CoverImage: strPtr("/uploads/books/a.png")}))
	require.NoError(t, repo.Create(ctx, &entities.Book{Title: "B", ISBN: "2", PublishedYear: 2000, AuthorID: author.ID}))

	paths, err := repo.AssetPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/books/a.png"}, paths)
}

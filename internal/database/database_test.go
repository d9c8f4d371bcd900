package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath, logger.Silent)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}

func persistenceCode(t *testing.T, err error) apperr.PersistenceCode {
	t.Helper()
	var tagged *apperr.Error
	require.True(t, errors.As(err, &tagged), "expected tagged error, got %v", err)
	require.Equal(t, apperr.KindPersistence, tagged.Kind)
	return tagged.DBCode
}

func TestNewDatabase_MigratesAndPings(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	assert.True(t, db.DB.Migrator().HasTable(&entities.Author{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.Book{}))
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "./catalog.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", dsn("./catalog.db"))
	assert.Equal(t, "file:x.db?cache=shared&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", dsn("file:x.db?cache=shared"))
}

func TestTranslateError_NilAndTagged(t *testing.T) {
	assert.NoError(t, TranslateError(nil))

	original := apperr.NotFound("Author")
	assert.Same(t, original, TranslateError(original))
}

func TestTranslateError_RecordNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	var author entities.Author
	err := db.DB.First(&author, "id = ?", "missing").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.Equal(t, apperr.RecordNotFound, persistenceCode(t, TranslateError(err)))
}

func TestTranslateErrorFor_NamesEntity(t *testing.T) {
	err := TranslateErrorFor(fmt.Errorf("load: %w", gorm.ErrRecordNotFound), "Book")

	var tagged *apperr.Error
	require.True(t, errors.As(err, &tagged))
	assert.Equal(t, "Book", tagged.Entity)
	assert.Equal(t, "Book not found", apperr.Resolve(err).Message)
}

func TestTranslateError_UniqueViolationNamesField(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.DB.Create(&entities.Author{Name: "Ursula", Email: "ursula@example.com"}).Error)
	err := db.DB.Create(&entities.Author{Name: "Other", Email: "ursula@example.com"}).Error
	require.Error(t, err)

	translated := TranslateError(err)
	assert.Equal(t, apperr.UniqueViolation, persistenceCode(t, translated))

	p := apperr.Resolve(translated)
	assert.Equal(t, 409, p.Status)
	assert.Equal(t, apperr.FieldDetails{Field: "email"}, p.Details)
}

func TestTranslateError_ForeignKeyViolation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := db.DB.Create(&entities.Book{
		Title:         "Orphan",
		ISBN:          "000-0",
		PublishedYear: 2001,
		AuthorID:      "does-not-exist",
	}).Error
	require.Error(t, err)

	assert.Equal(t, apperr.ForeignKeyViolation, persistenceCode(t, TranslateError(err)))
}

func TestTranslateError_SQLiteCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.PersistenceCode
	}{
		{"unique value", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, apperr.UniqueViolation},
		{"primary key pointer", &sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, apperr.UniqueViolation},
		{"foreign key", fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}), apperr.ForeignKeyViolation},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, apperr.PersistenceOther},
		{"duplicated key", gorm.ErrDuplicatedKey, apperr.UniqueViolation},
		{"plain", errors.New("disk I/O error"), apperr.PersistenceOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, persistenceCode(t, TranslateError(tt.err)))
		})
	}
}

func TestConstraintColumn(t *testing.T) {
	assert.Equal(t, "email", constraintColumn("UNIQUE constraint failed: authors.email"))
	assert.Equal(t, "isbn", constraintColumn("UNIQUE constraint failed: books.isbn"))
	assert.Equal(t, "authorId", constraintColumn("UNIQUE constraint failed: books.author_id, books.title"))
	assert.Equal(t, "", constraintColumn("constraint failed"))
}

func TestReplacedAsset(t *testing.T) {
	old := "/uploads/authors/old.jpg"
	fresh := "/uploads/authors/new.jpg"

	assert.Equal(t, []string{old}, ReplacedAsset(&old, &fresh))
	assert.Equal(t, []string{old}, ReplacedAsset(&old, nil))
	assert.Nil(t, ReplacedAsset(&old, &old))
	assert.Nil(t, ReplacedAsset(nil, &fresh))
	assert.Nil(t, ReplacedAsset(nil, nil))
}

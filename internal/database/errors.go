package database

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
)

// TranslateError converts gorm and sqlite failures into persistence errors.
// Errors that are already tagged pass through unchanged; nil stays nil.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var tagged *apperr.Error
	if errors.As(err, &tagged) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Persistence(apperr.RecordNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Persistence(apperr.UniqueViolation, err)
	}

	if sqliteErr, ok := asSQLiteError(err); ok {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return apperr.Persistence(apperr.UniqueViolation, err).OnField(constraintColumn(sqliteErr.Error()))
		case sqlite3.ErrConstraintForeignKey:
			return apperr.Persistence(apperr.ForeignKeyViolation, err)
		}
	}

	return apperr.Persistence(apperr.PersistenceOther, err)
}

// TranslateErrorFor is TranslateError with the entity name attached to
// not-found failures.
func TranslateErrorFor(err error, entity string) error {
	err = TranslateError(err)

	var tagged *apperr.Error
	if errors.As(err, &tagged) && tagged.Kind == apperr.KindPersistence &&
		tagged.DBCode == apperr.RecordNotFound && tagged.Entity == "" {
		tagged.Entity = entity
	}
	return err
}

func asSQLiteError(err error) (sqlite3.Error, bool) {
	var value sqlite3.Error
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *sqlite3.Error
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return sqlite3.Error{}, false
}

// constraintColumn extracts the first column named in a sqlite constraint
// message such as "UNIQUE constraint failed: books.isbn" and returns it in
// the camelCase form used by the API.
func constraintColumn(msg string) string {
	_, cols, ok := strings.Cut(msg, "failed: ")
	if !ok {
		return ""
	}
	col, _, _ := strings.Cut(cols, ",")
	col = strings.TrimSpace(col)
	if i := strings.LastIndex(col, "."); i >= 0 {
		col = col[i+1:]
	}
	return camelCase(col)
}

func camelCase(column string) string {
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── errors.go        # gorm/sqlite failures -> apperr persistence errors
//	├── assets.go        # which upload an update leaves unreferenced
//	├── authors/         # Author CRUD, cascading delete
//	└── books/           # Book CRUD, author reference checks
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./catalog.db", logger.Warn)
//
//	authorsRepo := authors.NewRepository(db.DB)
//	booksRepo := books.NewRepository(db.DB)
//
//	author, err := authorsRepo.Get(ctx, id)
//
// # Errors
//
// Repositories never return raw gorm or driver errors. Every failure is
// passed through TranslateError so the HTTP layer can dispatch on the
// persistence code instead of matching driver strings.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database

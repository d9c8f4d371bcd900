// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - AuthorStore, BookStore: catalog persistence (internal/catalog/catalog.go)
//   - AssetReferences: upload URLs still referenced by a table (internal/scheduler/upload_sweep.go)
//   - Pinger: database health (internal/http/config.go)
//
// ## Upload Interfaces
//
//   - AssetStore: persists an uploaded file and returns its URL (internal/catalog/catalog.go)
//   - AssetDiscarder: removes stale uploads after a commit (internal/catalog/catalog.go)
//   - UploadStore: listing and removal for the sweeper (internal/scheduler/upload_sweep.go)
//
// ## HTTP Interfaces
//
//   - AuthorService, BookService: what the controllers call (internal/http/config.go)
//
// # Adding a New Catalog Resource
//
//  1. Add the entity in internal/entities/ and migrate it in database.NewDatabase.
//
//  2. Create sub-package internal/database/<resource>/ with a Repository that
//     passes every failure through database.TranslateError.
//
//  3. Add a service in internal/catalog/ with a command struct carrying
//     validate tags, and a controller plus decoder in internal/http/.
//
//  4. Register routes in router.go for both the root and /api groups.
//
//  5. Add compile-time checks to checks.go:
//
//     var _ catalog.PublisherStore = (*publishers.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces

package interfaces

// Compile-time interface checks. A missing method fails the build here
// instead of at the wiring site.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
	"github.com/mrlokans/bookshelf/internal/uploads"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ catalog.AuthorStore = (*authors.Repository)(nil)
var _ catalog.BookStore = (*books.Repository)(nil)

var _ scheduler.AssetReferences = (*authors.Repository)(nil)
var _ scheduler.AssetReferences = (*books.Repository)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Catalog Services
// =============================================================================

var _ http.AuthorService = (*catalog.AuthorService)(nil)
var _ http.BookService = (*catalog.BookService)(nil)

// =============================================================================
// Upload Storage
// =============================================================================

var _ catalog.AssetStore = (*uploads.Store)(nil)
var _ catalog.AssetRemover = (*uploads.Store)(nil)
var _ scheduler.UploadStore = (*uploads.Store)(nil)
var _ tasks.UploadRemover = (*uploads.Store)(nil)

var _ catalog.AssetDiscarder = catalog.SyncDiscarder{}
var _ catalog.AssetDiscarder = (*tasks.QueuedDiscarder)(nil)
var _ tasks.Enqueuer = (*tasks.Client)(nil)

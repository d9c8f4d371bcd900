package http

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// AuthorService is the catalog surface used by the authors controller.
type AuthorService interface {
	List(ctx context.Context) ([]entities.Author, error)
	Get(ctx context.Context, id string) (*entities.Author, error)
	Create(ctx context.Context, cmd catalog.AuthorCommand) (*entities.Author, error)
	Update(ctx context.Context, id string, cmd catalog.AuthorCommand) (*entities.Author, error)
	Delete(ctx context.Context, id string) error
}

// BookService is the catalog surface used by the books controller.
type BookService interface {
	List(ctx context.Context) ([]entities.Book, error)
	Get(ctx context.Context, id string) (*entities.Book, error)
	Create(ctx context.Context, cmd catalog.BookCommand) (*entities.Book, error)
	Update(ctx context.Context, id string, cmd catalog.BookCommand) (*entities.Book, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Authors  AuthorService
	Books    BookService
	Database Pinger

	// Uploaded files are served from here at /uploads
	UploadsDir     string
	MaxUploadBytes int64

	CORSOrigins []string

	// Authentication (optional). Without a token controller the
	// /auth/token route is not registered.
	AuthMiddleware  *auth.Middleware
	TokenController *auth.TokenController
	RateLimiter     *auth.RateLimiter

	// Application info
	Version string
}

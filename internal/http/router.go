package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/uploads"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(metrics.Middleware())
	router.Use(RecoveryMiddleware())
	router.Use(ErrorMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.CORSMiddleware(cfg.CORSOrigins))
	router.Use(BodyLimitMiddleware(cfg.MaxUploadBytes))

	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, "")
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	authors := NewAuthorsController(cfg.Authors)
	books := NewBooksController(cfg.Books)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Uploaded photos and covers
	if cfg.UploadsDir != "" {
		router.Static(uploads.URLPrefix, cfg.UploadsDir)
	}

	for _, group := range []*gin.RouterGroup{&router.RouterGroup, router.Group("/api")} {
		if cfg.TokenController != nil {
			tokenRoute := []gin.HandlerFunc{}
			if cfg.RateLimiter != nil {
				tokenRoute = append(tokenRoute, cfg.RateLimiter.Middleware())
			}
			tokenRoute = append(tokenRoute, cfg.TokenController.Issue)
			group.POST("/auth/token", tokenRoute...)
		}

		requireToken := authMiddleware.RequireToken()

		group.GET("/authors", authors.List)
		group.GET("/authors/:id", authors.Get)
		group.POST("/authors", requireToken, authors.Create)
		group.PUT("/authors/:id", requireToken, authors.Update)
		group.DELETE("/authors/:id", requireToken, authors.Delete)

		group.GET("/books", books.List)
		group.GET("/books/:id", books.Get)
		group.POST("/books", requireToken, books.Create)
		group.PUT("/books/:id", requireToken, books.Update)
		group.DELETE("/books/:id", requireToken, books.Delete)
	}

	return router
}

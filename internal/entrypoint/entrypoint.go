package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/logging"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
	"github.com/mrlokans/bookshelf/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		// service connections
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	// Background workers stop after the last request has finished so that
	// discards queued by it are still picked up.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info().Msg("server exiting")
}

// CheckAuth reports configuration that would leave token mode unusable.
func CheckAuth(cfg config.Auth) error {
	switch cfg.Mode {
	case config.AuthModeNone:
		return nil
	case config.AuthModeToken:
		if cfg.TokenSecret == "" {
			return errors.New("AUTH_TOKEN_SECRET is required when AUTH_MODE=token")
		}
		if cfg.AdminPasswordHash == "" {
			return errors.New("AUTH_ADMIN_PASSWORD_HASH is required when AUTH_MODE=token")
		}
		return nil
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", cfg.Mode)
	}
}

func Run(cfg *config.Config, version string) {
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", version).Msg("starting bookshelf")

	if err := CheckAuth(cfg.Auth); err != nil {
		log.Fatal().Err(err).Msg("invalid auth configuration")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path, logging.GormLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	store, err := uploads.NewStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload store")
	}

	authorRepo := authors.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)

	// Stale uploads go through the task queue when it is enabled
	var discard catalog.AssetDiscarder = catalog.SyncDiscarder{Remover: store}
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(tasks.NewDiscardUploadQueue(store))
		discard = tasks.NewQueuedDiscarder(taskClient, store)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	authorService := catalog.NewAuthorService(authorRepo, store, discard)
	bookService := catalog.NewBookService(bookRepo, store, discard)

	routerCfg := http_controllers.RouterConfig{
		Authors:        authorService,
		Books:          bookService,
		Database:       db,
		UploadsDir:     store.Root(),
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		Version:        version,
	}

	var limiter *auth.RateLimiter
	if cfg.Auth.Mode == config.AuthModeToken {
		log.Info().Msg("authentication mode: token")
		tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiry)
		limiter = auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		routerCfg.AuthMiddleware = auth.NewMiddleware(tokens, cfg.Auth.Mode)
		routerCfg.TokenController = auth.NewTokenController(tokens, cfg.Auth.AdminPasswordHash, limiter)
		routerCfg.RateLimiter = limiter
	} else {
		log.Info().Msg("authentication mode: none (mutating routes are open)")
	}

	router := http_controllers.NewRouter(routerCfg)

	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	sweeper := scheduler.NewUploadSweeper(store, scheduler.SweepConfig{
		Enabled:  cfg.UploadSweep.Enabled,
		Schedule: cfg.UploadSweep.Schedule,
		Grace:    cfg.UploadSweep.Grace,
	}, authorRepo, bookRepo)
	if err := sweeper.Start(sweeperCtx); err != nil {
		log.Error().Err(err).Msg("upload sweep not scheduled")
	}

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		sweeperCancel()
		sweeper.Stop()
		if limiter != nil {
			limiter.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

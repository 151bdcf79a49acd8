package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"user_auth/internal/config"
	"user_auth/internal/handler"
	"user_auth/internal/logging"
	"user_auth/internal/middleware"
	"user_auth/internal/repository"
	"user_auth/internal/service"
	"user_auth/internal/storage"
	"user_auth/internal/utils"
	"user_auth/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	dbPool, err := config.ConnectDB(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := config.Migrate(ctx, dbPool, logger); err != nil {
		return err
	}

	// --- Media storage ---
	media, err := newMediaStorage(ctx, cfg.Media)
	if err != nil {
		return err
	}

	// --- Services ---
	store := repository.NewStore(dbPool)
	v := validator.New(service.NewLookup(store), validator.Options{
		Region:         cfg.PhoneDefaultRegion,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})
	signer := utils.NewTokenSigner(cfg.JWTSecret, cfg.JWTExpirationHours)

	authService := service.NewAuthService(store, v, media, signer, logger)
	profileService := service.NewProfileService(store, v, media, logger)

	authHandler := handler.NewAuthHandler(authService, media, cfg.Media.MaxUploadBytes, logger)
	profileHandler := handler.NewProfileHandler(profileService, media, cfg.Media.MaxUploadBytes, logger)

	// --- Router ---
	router, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst)
	go loginLimiter.Run(ctx)

	tokenAuthMW := middleware.TokenAuthMiddleware(authService, logger)
	optionalAuthMW := middleware.OptionalTokenAuth(authService, logger)
	adminMW := middleware.AdminMiddleware()

	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, optionalAuthMW, middleware.RateLimitMiddleware(loginLimiter))
	profileHandler.RegisterProfileRoutes(apiGroup, tokenAuthMW, adminMW)

	if fs, ok := media.(*storage.FileSystem); ok && strings.HasPrefix(cfg.Media.URL, "/") {
		router.Static(strings.TrimRight(cfg.Media.URL, "/"), fs.Root())
	}

	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

// newEngine builds the gin engine with the global middleware. Only
// TRUSTED_PROXIES may set the client IP through forwarding headers.
func newEngine(cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS(cfg.CORSAllowOrigins))
	router.MaxMultipartMemory = cfg.Media.MaxUploadBytes + 1<<20
	return router, nil
}

func newMediaStorage(ctx context.Context, cfg config.MediaConfig) (storage.Storage, error) {
	if cfg.Backend == config.MediaBackendS3 {
		return storage.NewS3(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return storage.NewFileSystem(cfg.Root, cfg.URL)
}

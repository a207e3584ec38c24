package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"atlas/internal/api"
	routes "atlas/internal/api/handlers"
	"atlas/internal/config"
	"atlas/internal/geometry"
	"atlas/internal/logger"
	"atlas/internal/model"
	"atlas/internal/postgres"
	"atlas/internal/provider"
	"atlas/internal/provider/cache"
	"atlas/internal/provider/continent"
	"atlas/internal/provider/pixabay"
	"atlas/internal/provider/restcountries"
	"atlas/internal/redis"
	"atlas/internal/service/detail"
	"atlas/internal/service/selector"
	"atlas/internal/service/viewport"
	"atlas/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, closeLog, err := setupLogging(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer func() { _ = closeLog() }()
	defer func() { _ = zl.Sync() }()

	ctx, stop := setupSignalHandler()
	defer stop()

	services := initializeDatabaseAndCache(cfg, zl)
	defer func() {
		if err := closeConnections(); err != nil {
			zl.Error("error closing connections", zap.Error(err))
		}
	}()

	src, err := geometry.LoadSource(cfg.GeometryPath, cfg.GeometryNameProperty, zl)
	if err != nil {
		zl.Fatal("failed to load geometry", zap.Error(err))
	}

	deps := initializeServices(cfg, src, services, zl)

	worker.StartAllWorkers(ctx, cfg, deps.Registry, zl)

	info := map[string]string{
		"service":  "atlas",
		"port":     cfg.Port,
		"features": strconv.Itoa(src.Len()),
		"postgres": enabled(services.db),
		"redis":    enabled(services.cache),
	}
	if err := runAPIServer(ctx, cfg, info, deps, zl); err != nil {
		zl.Error("api server stopped", zap.Error(err))
	}
}

func setupLogging(cfg config.Config) (*zap.Logger, func() error, error) {
	zl, closeFn, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(zl)
	return zl, closeFn, nil
}

// backing holds the optional infrastructure; nil fields are not configured
type backing struct {
	db    *continent.Store
	cache *redis.Cache
}

func enabled[T any](v *T) string {
	if v == nil {
		return "disabled"
	}
	return "enabled"
}

func initializeDatabaseAndCache(cfg config.Config, zl *zap.Logger) backing {
	var b backing

	// Initialize PostgreSQL
	if cfg.DBUrl != "" {
		db, err := postgres.Init(cfg.DBUrl, zl)
		if err != nil {
			zl.Fatal("failed to initialize postgres", zap.Error(err))
		}
		b.db = continent.NewStore(db)
	} else {
		zl.Warn("DB_URL not set, continent metadata store disabled")
	}

	// Initialize Redis
	if cfg.RedisUrl != "" {
		client, err := redis.Init(cfg.RedisUrl, zl)
		if err != nil {
			zl.Fatal("failed to initialize redis", zap.Error(err))
		}
		b.cache = redis.NewCache(client, "atlas", config.CacheOpTimeout)
	} else {
		zl.Warn("REDIS_URL not set, provider cache disabled")
	}

	return b
}

func initializeServices(cfg config.Config, src *geometry.Source, b backing, zl *zap.Logger) routes.Deps {
	countries := restcountries.NewClient(cfg.RestCountriesURL, cfg.HTTPTimeout, zl.Named("restcountries"))

	var store provider.ContinentStore
	if b.db != nil {
		store = b.db
	}
	catalog := provider.NewCatalog(countries, store, zl.Named("catalog"))

	var metadata cache.Source = catalog
	if b.cache != nil {
		metadata = cache.NewMetadata(catalog, b.cache, cfg.CacheTTL, zl.Named("cache"))
	}

	var images detail.ImageProvider
	if cfg.PixabayAPIKey != "" {
		var pix cache.ImageSource = pixabay.NewClient(cfg.PixabayURL, cfg.PixabayAPIKey, cfg.PixabayPerPage, cfg.HTTPTimeout, zl.Named("pixabay"))
		if b.cache != nil {
			pix = cache.NewImages(pix, b.cache, cfg.CacheTTL, zl.Named("cache"))
		}
		images = pix
	} else {
		zl.Warn("PIXABAY_API_KEY not set, image pages will be empty")
	}

	fitter := viewport.NewFitter(
		model.ViewportConfig{
			Scale:  cfg.DefaultScale,
			Center: [2]float64{cfg.DefaultCenterLng, cfg.DefaultCenterLat},
		},
		cfg.MinScale,
		cfg.MarginFactor,
	)

	detailDeps := detail.Dependencies{
		Selector:   selector.NewSelector(src),
		Fitter:     fitter,
		Metadata:   metadata,
		Membership: metadata,
		Images:     images,
		Logger:     zl.Named("detail"),
	}

	return routes.Deps{
		Geometry:  src,
		Detail:    detailDeps,
		Registry:  detail.NewRegistry(detailDeps),
		Countries: metadata,
		Logger:    zl.Named("api"),
	}
}

func runAPIServer(ctx context.Context, cfg config.Config, info map[string]string, deps routes.Deps, zl *zap.Logger) error {
	// Initialize Gin router
	r := gin.New()
	api.SetupRouter(r, info, deps)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("api server listening", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutdown signal received, stopping api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeConnections() error {
	return multierr.Combine(
		postgres.Close(),
		redis.Close(),
	)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

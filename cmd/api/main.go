package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/staynest/staynest-go/internal/config"
	"github.com/staynest/staynest-go/internal/crypto"
	"github.com/staynest/staynest-go/internal/handler"
	"github.com/staynest/staynest-go/internal/logger"
	"github.com/staynest/staynest-go/internal/media"
	"github.com/staynest/staynest-go/internal/metrics"
	"github.com/staynest/staynest-go/internal/middleware"
	"github.com/staynest/staynest-go/internal/repository"
	"github.com/staynest/staynest-go/internal/service"
)

// recorder is every metrics sink the services and middleware need.
type recorder interface {
	service.AuthMetrics
	service.ListingMetrics
	media.Recorder
	middleware.RequestObserver
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx := context.Background()

	users, listings, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("store unavailable", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	store, err := openMedia(ctx, cfg.Media)
	if err != nil {
		slog.Error("media storage unavailable", "backend", cfg.Media.Backend, "error", err)
		os.Exit(1)
	}

	var rec recorder = metrics.Nop{}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = metrics.NewCollector(reg)
		metricsHandler = metrics.Handler(reg)
	}

	hasher := crypto.NewHasher(cfg.Hash)
	tokens := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	ingestor := media.NewIngestor(store, rec)

	authService := service.NewAuthService(users, hasher, tokens, ingestor, media.ProfileImagePolicy(cfg.Media.MaxUploadBytes), rec)
	listingService := service.NewListingService(listings, users, ingestor, media.ListingPhotoPolicy(cfg.Media.MaxUploadBytes), rec)

	routes := handler.Routes{
		Auth:     handler.NewAuthHandler(authService, cfg.Media.MaxUploadBytes),
		Listings: handler.NewListingHandler(listingService, cfg.Media.MaxUploadBytes),
		Verifier: tokens,
		Observer: rec,
		Metrics:  metricsHandler,
	}
	if cfg.Media.Backend == "local" {
		routes.Uploads = &handler.Uploads{Dir: cfg.Media.UploadDir, PublicPath: cfg.Media.PublicPath}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.NewRouter(routes),
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "media", cfg.Media.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		return
	}

	slog.Info("server stopped")
}

func openStores(ctx context.Context, cfg config.Config) (service.UserStore, service.ListingStore, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		slog.Warn("using in-memory store, data is lost on restart")
		mem := repository.NewMemoryStore()
		return mem.Users(), mem.Listings(), func() {}, nil
	case "mysql":
		db, err := repository.NewDB(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := repository.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, nil, err
			}
		}
		return repository.NewUserRepository(db), repository.NewListingRepository(db), func() { db.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openMedia(ctx context.Context, cfg config.MediaConfig) (media.Store, error) {
	switch cfg.Backend {
	case "local":
		return media.NewLocalStore(cfg.UploadDir, cfg.PublicPath)
	case "s3":
		return media.NewS3Store(ctx, media.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    cfg.S3Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/foodgram/backend/internal/handlers"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/router"
	"github.com/anonto42/foodgram/backend/internal/server"
	"github.com/anonto42/foodgram/backend/internal/storage"
	"github.com/anonto42/foodgram/backend/pkg/config"
	"github.com/anonto42/foodgram/backend/pkg/firebase"
	"github.com/thejerf/suture/v4"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: logging.FormatFor(cfg.Env, cfg.LogFormat),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	if err := models.AutoMigrate(db.Postgres); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate schema")
	}

	images, err := newImageStore(ctx, cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Str("store", cfg.ImageStore).Msg("failed to initialize image storage")
	}

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize Firebase")
	}
	var verifier handlers.TokenVerifier
	if firebaseApp != nil {
		verifier = firebaseApp.AuthClient
	}

	e := router.New(router.Dependencies{
		DB:            db.Postgres,
		Images:        images,
		Firebase:      verifier,
		JWTSecret:     cfg.JWTSecret,
		AuthRateLimit: cfg.AuthRateLimit,
		TokenTTL:      cfg.TokenTTL,
		MediaURL:      cfg.MediaURL,
		PageSize:      cfg.PageSize,
		PDFFontPath:   cfg.PDFFontPath,
	})

	services := []suture.Service{
		server.NewHTTPService("api", &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
		}, shutdownTimeout),
	}
	if cfg.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		services = append(services, server.NewHTTPService("metrics", &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}, shutdownTimeout))
	}

	logging.Info().
		Str("port", cfg.Port).
		Str("metrics_port", cfg.MetricsPort).
		Str("image_store", cfg.ImageStore).
		Msg("foodgram api starting")

	if err := server.Run(ctx, server.NewSupervisor("foodgram", shutdownTimeout), services...); err != nil {
		logging.Error().Err(err).Msg("server stopped with error")
		return
	}
	logging.Info().Msg("server stopped")
}

func newImageStore(ctx context.Context, cfg *config.Config, db *config.DB) (storage.ImageStore, error) {
	switch cfg.ImageStore {
	case "", "fs":
		return storage.NewFSStore(cfg.MediaRoot)
	case "gridfs":
		if db.Mongo == nil {
			return nil, fmt.Errorf("IMAGE_STORE=gridfs requires MONGO_URI")
		}
		return storage.NewGridFSStore(db.Mongo.Database(cfg.MongoDatabase))
	case "s3":
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
	default:
		return nil, fmt.Errorf("unknown IMAGE_STORE %q", cfg.ImageStore)
	}
}

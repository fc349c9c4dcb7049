package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/backend/internal/config"
	"foodgram/backend/internal/database"
	"foodgram/backend/internal/handler"
	"foodgram/backend/internal/logging"
	"foodgram/backend/internal/repository"
	"foodgram/backend/internal/server"
	"foodgram/backend/internal/storage"
	"foodgram/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	// Swagger imports
	_ "foodgram/backend/docs" // This is important for swag to find the generated docs
)

// @title           Foodgram API
// @version         1.0
// @description     Recipes, favorites, subscriptions and shopping lists.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apiKey TokenAuth
// @in header
// @name Authorization
// @description Token <jwt> or Bearer <jwt>
func main() {
	ingredientsPath := flag.String("load-ingredients", "", "import ingredients from a JSON fixture and exit")
	tagsPath := flag.String("load-tags", "", "import tags from a JSON fixture and exit")
	flag.Parse()

	logging.Init("info", "json", os.Stderr)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DBDriver, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database unavailable")
	}

	if *ingredientsPath != "" || *tagsPath != "" {
		loadFixtures(ctx, logger, db, *ingredientsPath, *tagsPath)
		return
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("image storage unavailable")
	}

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	repo := repository.New(db)
	h := handler.New(repo, store, tokens, cfg)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		Config:  cfg,
		Handler: h,
		Tokens:  tokens,
		Users:   repo,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("server is running")
		logger.Info().Msgf("Swagger UI is available at %s/swagger/index.html", cfg.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
}

func loadFixtures(ctx context.Context, logger zerolog.Logger, db *gorm.DB, ingredientsPath, tagsPath string) {
	if ingredientsPath != "" {
		n, err := database.LoadIngredients(ctx, db, ingredientsPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("ingredient import failed")
		}
		logger.Info().Int("inserted", n).Str("file", ingredientsPath).Msg("ingredients loaded")
	}
	if tagsPath != "" {
		n, err := database.LoadTags(ctx, db, tagsPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("tag import failed")
		}
		logger.Info().Int("inserted", n).Str("file", tagsPath).Msg("tags loaded")
	}
}

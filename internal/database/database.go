package database

import (
	"context"
	"fmt"
	"time"

	"foodgram/backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database for the given driver, checks connectivity and
// runs migrations.
func Connect(ctx context.Context, driver, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// Configure GORM logger
	gormLogger := logger.New(
		&log,
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Str("driver", driver).Msg("database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Msg("database migrated successfully")

	return db, nil
}

// Migrate creates or updates every table of the data model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.IngredientInRecipe{},
		&models.Favorite{},
		&models.ShoppingCart{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Rows imported before name_lower existed. Postgres LOWER is
	// locale-aware; fresh SQLite databases never hit this.
	if err := db.Exec("UPDATE ingredients SET name_lower = LOWER(name) WHERE name_lower = ''").Error; err != nil {
		return fmt.Errorf("failed to backfill ingredient search names: %w", err)
	}
	return nil
}

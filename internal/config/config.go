package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	HTTPAddr    string        `mapstructure:"HTTP_ADDR"`
	DBDriver    string        `mapstructure:"DB_DRIVER"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	TokenTTL    time.Duration `mapstructure:"TOKEN_TTL"`

	// PublicURL is the externally visible origin used to build short links.
	PublicURL    string `mapstructure:"PUBLIC_URL"`
	NotFoundPath string `mapstructure:"NOT_FOUND_PATH"`
	CORSOrigins  string `mapstructure:"CORS_ORIGINS"`

	PageSize    int `mapstructure:"PAGE_SIZE"`
	PageSizeMax int `mapstructure:"PAGE_SIZE_MAX"`

	MinCookingTime      int `mapstructure:"MIN_COOKING_TIME"`
	MaxCookingTime      int `mapstructure:"MAX_COOKING_TIME"`
	MinIngredientAmount int `mapstructure:"MIN_INGREDIENT_AMOUNT"`
	MaxIngredientAmount int `mapstructure:"MAX_INGREDIENT_AMOUNT"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	MediaRoot      string `mapstructure:"MEDIA_ROOT"`
	MediaURL       string `mapstructure:"MEDIA_URL"`
	S3Bucket       string `mapstructure:"S3_BUCKET"`
	S3Region       string `mapstructure:"S3_REGION"`
	S3Endpoint     string `mapstructure:"S3_ENDPOINT"`
	S3PublicURL    string `mapstructure:"S3_PUBLIC_URL"`
	S3AccessKey    string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey    string `mapstructure:"S3_SECRET_KEY"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// Every key needs a default so that AutomaticEnv picks it up on Unmarshal.
var defaults = map[string]any{
	"HTTP_ADDR":             ":8080",
	"DB_DRIVER":             "postgres",
	"DATABASE_URL":          "",
	"JWT_SECRET":            "",
	"TOKEN_TTL":             "168h",
	"PUBLIC_URL":            "http://localhost:8080",
	"NOT_FOUND_PATH":        "/not-found",
	"CORS_ORIGINS":          "*",
	"PAGE_SIZE":             6,
	"PAGE_SIZE_MAX":         100,
	"MIN_COOKING_TIME":      1,
	"MAX_COOKING_TIME":      32000,
	"MIN_INGREDIENT_AMOUNT": 1,
	"MAX_INGREDIENT_AMOUNT": 32000,
	"STORAGE_BACKEND":       "local",
	"MEDIA_ROOT":            "./media",
	"MEDIA_URL":             "/media",
	"S3_BUCKET":             "",
	"S3_REGION":             "us-east-1",
	"S3_ENDPOINT":           "",
	"S3_PUBLIC_URL":         "",
	"S3_ACCESS_KEY":         "",
	"S3_SECRET_KEY":         "",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Msg(".env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration populated only with defaults.
func Default() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.PageSize < 1 || c.PageSizeMax < c.PageSize {
		errs = append(errs, errors.New("PAGE_SIZE must be positive and not exceed PAGE_SIZE_MAX"))
	}
	if c.MinCookingTime > c.MaxCookingTime {
		errs = append(errs, errors.New("MIN_COOKING_TIME exceeds MAX_COOKING_TIME"))
	}
	if c.MinIngredientAmount > c.MaxIngredientAmount {
		errs = append(errs, errors.New("MIN_INGREDIENT_AMOUNT exceeds MAX_INGREDIENT_AMOUNT"))
	}
	switch c.StorageBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 storage backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q is not supported", c.StorageBackend))
	}

	return errors.Join(errs...)
}

// AllowedOrigins splits CORS_ORIGINS into a list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

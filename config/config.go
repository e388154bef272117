package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port     string `envconfig:"PORT"      default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Blob backend selection: DATABASE_URL wins over BLOB_BASE_URL, which
	// wins over the on-disk directory.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	BlobBaseURL string `envconfig:"BLOB_BASE_URL"`
	BlobDir     string `envconfig:"BLOB_DIR" default:"./data"`

	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"15s"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Port=%s, LogLevel=%s, CacheTTL=%s",
			config.Port, config.LogLevel, config.CacheTTL)
	})
	return &config
}

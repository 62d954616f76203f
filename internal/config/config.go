package config

import (
	"os"
	"progression-engine/internal/constants"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath      string
	ServerPort  string
	LogLevel    string
	CatalogPath string

	ListeningAPIURL    string
	ListeningAPIKey    string
	ListeningCacheTTL  time.Duration
	ListeningCacheSize int

	AnomalyLegendaryPerDay int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:                 getEnv("DB_PATH", "progression.db"),
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		CatalogPath:            getEnv("CATALOG_PATH", "configs/catalog.toml"),
		ListeningAPIURL:        getEnv("LISTENING_API_URL", "https://ws.audioscrobbler.com/2.0/"),
		ListeningAPIKey:        getEnv("LISTENING_API_KEY", ""),
		ListeningCacheTTL:      getDuration(logger, "LISTENING_CACHE_TTL", constants.ListeningCacheTTL),
		ListeningCacheSize:     getInt(logger, "LISTENING_CACHE_SIZE", constants.ListeningCacheSize),
		AnomalyLegendaryPerDay: getInt(logger, "ANOMALY_LEGENDARY_PER_DAY", constants.AnomalyLegendaryPerDay),
	}

	if cfg.ListeningAPIKey == "" {
		logger.Warn().Msg("LISTENING_API_KEY is not set, streaming verification will degrade to no progress")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("catalog_path", cfg.CatalogPath).
		Dur("listening_cache_ttl", cfg.ListeningCacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(logger zerolog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func getInt(logger zerolog.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

var Module = fx.Provide(Load)

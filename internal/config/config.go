package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults for the optional settings.
const (
	DefaultListenAddr     = ":5000"
	DefaultDataDir        = "data"
	DefaultCatalogBaseURL = "https://www.themealdb.com/api/json/v1/1"
	defaultSessionTTL     = 24 * time.Hour
)

// Config holds the configuration for the application.
type Config struct {
	ListenAddr     string
	DataDir        string
	CacheDBPath    string
	SessionSecret  string
	SessionTTL     time.Duration
	CatalogBaseURL string
}

// NewFromEnv creates a new Config object from environment variables. Only
// SESSION_SECRET is required; everything else has a sensible default.
func NewFromEnv() (*Config, error) {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable not set")
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	cacheDBPath := os.Getenv("CACHE_DB_PATH")
	if cacheDBPath == "" {
		cacheDBPath = filepath.Join(dataDir, "catalog_cache.db")
	}

	catalogBaseURL := os.Getenv("MEALDB_API_URL")
	if catalogBaseURL == "" {
		catalogBaseURL = DefaultCatalogBaseURL
	}

	sessionTTL := defaultSessionTTL
	if ttlStr := os.Getenv("SESSION_TTL_HOURS"); ttlStr != "" {
		hours, err := strconv.Atoi(ttlStr)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer, got %q", ttlStr)
		}
		sessionTTL = time.Duration(hours) * time.Hour
	}

	return &Config{
		ListenAddr:     listenAddr,
		DataDir:        dataDir,
		CacheDBPath:    cacheDBPath,
		SessionSecret:  sessionSecret,
		SessionTTL:     sessionTTL,
		CatalogBaseURL: catalogBaseURL,
	}, nil
}

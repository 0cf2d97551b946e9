// Package config provides centralized default values for OutfitStack
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

// loadEnvFile applies .env overrides without replacing variables already set.
func loadEnvFile() {
	envLoaded.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		log.Println("Loading configuration overrides from .env file...")
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Failed to load .env file: %v", err)
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

// getEnvSecret is getEnvString without echoing the value.
func getEnvSecret(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=<redacted>", key)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) > 0 {
			log.Printf("Config override: %s=%v", key, out)
			return out
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	GinMode            string
	CORSOrigins        []string

	// Database
	DatabaseDriver           string
	DatabaseURL              string
	TursoAuthToken           string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration
	SeedDemoOwner            string

	// Cache Configuration
	ItemCacheTTL         time.Duration
	OutfitCacheTTL       time.Duration
	OwnerIdleTimeout     time.Duration
	CacheCleanupInterval time.Duration
	CacheCleanupVerbose  bool

	// Resolution
	MaxBatchSize     int
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	// missing/total ratio above which high_missing_rate fires; 0 alarms on any missing item
	HighMissingRateThreshold float64

	// Auth
	JWTSecret string

	// Media
	MediaBaseURL string
	MediaPath    string

	// Logging
	LogDirectory string
	LogJSON      bool
	LogToFile    bool

	// Telemetry stream
	TelemetryBufferSize int
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	GinMode = getEnvString("GIN_MODE", "release")
	CORSOrigins = getEnvList("CORS_ORIGINS", []string{
		"http://localhost:3000",
		"http://localhost:4321",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:4321",
		"http://[::1]:3000",
		"http://[::1]:4321",
	})

	// Database
	DatabaseDriver = getEnvString("DATABASE_DRIVER", "sqlite3")
	DatabaseURL = getEnvString("DATABASE_URL", "file:outfitstack.db?_foreign_keys=on")
	TursoAuthToken = getEnvSecret("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 200*time.Millisecond)
	SeedDemoOwner = getEnvString("SEED_DEMO_OWNER", "")

	// Cache Configuration
	ItemCacheTTL = time.Duration(getEnvInt("ITEM_CACHE_TTL_HOURS", 24)) * time.Hour
	OutfitCacheTTL = getEnvDuration("OUTFIT_CACHE_TTL", 10*time.Minute)
	OwnerIdleTimeout = time.Duration(getEnvInt("OWNER_IDLE_TIMEOUT_HOURS", 6)) * time.Hour
	CacheCleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 15)) * time.Minute
	CacheCleanupVerbose = getEnvBool("CACHE_CLEANUP_VERBOSE", false)

	// Resolution
	MaxBatchSize = getEnvInt("MAX_BATCH_SIZE", 100)
	RetryMaxAttempts = getEnvInt("RETRY_MAX_ATTEMPTS", 3)
	RetryBaseDelay = getEnvDuration("RETRY_BASE_DELAY", 500*time.Millisecond)
	RetryMaxDelay = getEnvDuration("RETRY_MAX_DELAY", 10*time.Second)
	HighMissingRateThreshold = getEnvFloat("HIGH_MISSING_RATE_THRESHOLD", 0.20)

	// Auth
	JWTSecret = getEnvSecret("JWT_SECRET", "")

	// Media
	MediaBaseURL = getEnvString("MEDIA_BASE_URL", "/media")
	MediaPath = getEnvString("MEDIA_PATH", "media")

	// Logging
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogJSON = getEnvBool("LOG_JSON", true)
	LogToFile = getEnvBool("LOG_TO_FILE", false)

	TelemetryBufferSize = getEnvInt("TELEMETRY_BUFFER_SIZE", 256)
}

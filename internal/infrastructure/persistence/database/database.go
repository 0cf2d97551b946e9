// Package database opens and tunes SQL connections for the wardrobe store.
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver string
}

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig reads pool limits from pkg/config.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
	}
}

// NewConnection establishes a new database connection for the specified driver.
func NewConnection(driverName, dataSourceName string) (*DB, error) {
	return NewConnectionWithLogger(driverName, dataSourceName, logging.NewNopLogger())
}

// NewConnectionWithLogger establishes a new database connection for the specified driver with logging.
func NewConnectionWithLogger(driverName, dataSourceName string, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Database().Debug("Creating new database connection", "driverName", driverName)

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, err
	}

	if err = db.Ping(); err != nil {
		logger.Database().Error("Database ping failed", "error", err.Error(), "driverName", driverName)
		db.Close()
		return nil, err
	}

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "driverName", driverName, "duration", duration)
	if duration > GetSlowQueryThreshold() {
		logger.LogSlowQuery("DATABASE_CONNECTION", duration, "system")
	}

	return &DB{DB: db, Driver: driverName}, nil
}

// Open connects using the configured driver and URL and applies pool limits.
func Open(logger *logging.ChanneledLogger) (*DB, error) {
	driver, dsn := ResolveDSN(config.DatabaseDriver, config.DatabaseURL, config.TursoAuthToken)
	db, err := NewConnectionWithLogger(driver, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	db.ApplyPool(DefaultPoolConfig())
	return db, nil
}

// ApplyPool sets connection pool limits. SQLite in-memory databases are pinned
// to one connection so every query sees the same database.
func (db *DB) ApplyPool(pool PoolConfig) {
	if db.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
}

// ResolveDSN picks the driver for a database URL. libsql:// and https:// URLs
// go to the libSQL client with the auth token appended.
func ResolveDSN(driver, url, authToken string) (string, string) {
	if strings.HasPrefix(url, "libsql://") || strings.HasPrefix(url, "https://") {
		driver = DriverLibSQL
	}
	if driver == DriverLibSQL && authToken != "" && !strings.Contains(url, "authToken=") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url = url + sep + "authToken=" + authToken
	}
	if driver == "" {
		driver = DriverSQLite
	}
	return driver, url
}

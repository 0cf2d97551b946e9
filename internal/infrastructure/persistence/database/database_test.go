package database

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

func TestResolveDSN(t *testing.T) {
	driver, dsn := ResolveDSN("sqlite3", "file:test.db", "tok")
	assert.Equal(t, DriverSQLite, driver)
	assert.Equal(t, "file:test.db", dsn)

	driver, dsn = ResolveDSN("sqlite3", "libsql://db.turso.io", "tok")
	assert.Equal(t, DriverLibSQL, driver)
	assert.Equal(t, "libsql://db.turso.io?authToken=tok", dsn)

	_, dsn = ResolveDSN("libsql", "libsql://db.turso.io?tls=1", "tok")
	assert.Equal(t, "libsql://db.turso.io?tls=1&authToken=tok", dsn)

	driver, _ = ResolveDSN("", "file:x.db", "")
	assert.Equal(t, DriverSQLite, driver)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
	assert.Equal(t, "?, ?, ?", Placeholders(3))
	assert.Equal(t, []any{"a", "b"}, StringArgs([]string{"a", "b"}))
}

func TestInMemoryConnection(t *testing.T) {
	db, err := NewConnection(DriverSQLite, "file::memory:")
	require.NoError(t, err)
	defer db.Close()
	db.ApplyPool(DefaultPoolConfig())

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestCheckAndLogSlowQuery(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{Writer: &buf, JSONFormat: true, DefaultLevel: slog.LevelDebug})
	require.NoError(t, err)

	CheckAndLogSlowQuery(logger, "SELECT 1", time.Nanosecond, "owner-1")
	assert.Empty(t, buf.String())

	CheckAndLogSlowQuery(logger, "SELECT 1", GetSlowQueryThreshold()+time.Second, "owner-1")
	assert.Contains(t, buf.String(), "Slow query detected")
}

package database

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	db := openMemory(t)
	tc := NewTableCreator()
	require.NoError(t, tc.CreateSchema(db))
	require.NoError(t, tc.CreateSchema(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('wardrobe_items', 'outfit_suggestions')`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestSeedDemoWardrobeOnce(t *testing.T) {
	db := openMemory(t)
	tc := NewTableCreator()
	require.NoError(t, tc.CreateSchema(db))

	seeded, err := tc.SeedDemoWardrobe(db, "owner-1")
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = tc.SeedDemoWardrobe(db, "owner-1")
	require.NoError(t, err)
	assert.False(t, seeded)

	var items, outfits int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM wardrobe_items WHERE owner_id = ?`, "owner-1").Scan(&items))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM outfit_suggestions WHERE owner_id = ?`, "owner-1").Scan(&outfits))
	assert.Equal(t, len(demoItems), items)
	assert.Equal(t, 3, outfits)
}

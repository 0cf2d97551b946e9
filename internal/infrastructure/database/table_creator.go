// Package database provides schema creation and demo seeding
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/security"
)

// TableCreator handles the creation of the wardrobe database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

type demoItem struct {
	name     string
	itemType string
	colour   string
}

var demoItems = []demoItem{
	{"Navy blazer", "blazer", `["navy"]`},
	{"", "shirt", `["white"]`},
	{"Grey chinos", "trousers", `["grey"]`},
	{"", "", `[]`},
}

// SeedDemoWardrobe adds a small wardrobe and outfit set for ownerID when the
// owner has no items yet. One outfit references a deleted item and one holds
// a malformed id list, so resolution fallbacks are visible from a fresh install.
func (tc *TableCreator) SeedDemoWardrobe(db *sql.DB, ownerID string) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM wardrobe_items WHERE owner_id = ?)", ownerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing wardrobe: %w", err)
	}
	if exists {
		return false, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	ids := make([]string, 0, len(demoItems))
	for _, item := range demoItems {
		id := security.GenerateULID()
		ids = append(ids, id)
		_, err := tx.Exec(`INSERT INTO wardrobe_items (id, owner_id, name, item_type, colour, created) VALUES (?, ?, ?, ?, ?, ?)`,
			id, ownerID, nullIfEmpty(item.name), nullIfEmpty(item.itemType), item.colour, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert demo item: %w", err)
		}
	}

	outfits := []struct {
		title   string
		itemIDs string
	}{
		{"Office", fmt.Sprintf(`["%s","%s","%s"]`, ids[0], ids[1], ids[2])},
		{"Weekend", fmt.Sprintf(`["%s","%s"," "]`, ids[3], security.GenerateULID())},
		{"Imported", `{"legacy":true}`},
	}
	for _, o := range outfits {
		_, err := tx.Exec(`INSERT INTO outfit_suggestions (id, owner_id, title, item_ids, created) VALUES (?, ?, ?, ?, ?)`,
			security.GenerateULID(), ownerID, o.title, o.itemIDs, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert demo outfit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit demo wardrobe: %w", err)
	}
	return true, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS wardrobe_items (id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, name TEXT, item_type TEXT, colour TEXT, thumb_key TEXT, clean_key TEXT, original_key TEXT, created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS outfit_suggestions (id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, title TEXT NOT NULL, occasion TEXT, item_ids TEXT NOT NULL DEFAULT '[]', created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_wardrobe_items_owner_id ON wardrobe_items(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wardrobe_items_owner_created ON wardrobe_items(owner_id, created)`,
	`CREATE INDEX IF NOT EXISTS idx_outfit_suggestions_owner_id ON outfit_suggestions(owner_id)`,
}

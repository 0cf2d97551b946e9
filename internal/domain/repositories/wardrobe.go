// Package repositories defines the repository interfaces for wardrobe entities.
// These repositories abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package repositories

import (
	"context"
	"errors"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

// ErrNotFound is returned by mutations that target a record the owner does not have.
var ErrNotFound = errors.New("record not found")

type ItemRepository interface {
	FindByID(ctx context.Context, ownerID, id string) (*wardrobe.Item, error)
	FetchItems(ctx context.Context, ownerID string, ids []string) (map[string]*wardrobe.Item, error)
	FindAll(ctx context.Context, ownerID string) ([]*wardrobe.Item, error)
	Store(ctx context.Context, item *wardrobe.Item) error
	Update(ctx context.Context, item *wardrobe.Item) error
	Delete(ctx context.Context, ownerID, id string) error
}

type OutfitRepository interface {
	FindByID(ctx context.Context, ownerID, id string) (*wardrobe.OutfitSuggestion, error)
	FindAll(ctx context.Context, ownerID string) ([]*wardrobe.OutfitSuggestion, error)
	Store(ctx context.Context, outfit *wardrobe.OutfitSuggestion) error
	Delete(ctx context.Context, ownerID, id string) error
}

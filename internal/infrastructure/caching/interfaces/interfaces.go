// Package interfaces defines cache operation contracts for per-owner wardrobe data.
package interfaces

import (
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/types"
)

// ItemCache defines operations for item record caching
type ItemCache interface {
	GetItem(ownerID, itemID string) (*wardrobe.Item, bool)
	SetItem(ownerID string, item *wardrobe.Item)
	SetItems(ownerID string, items []*wardrobe.Item)
	InvalidateItem(ownerID, itemID string)
	GetAllItemIDs(ownerID string) []string
}

// OutfitCache defines operations for outfit list caching
type OutfitCache interface {
	GetOutfits(ownerID string) ([]*wardrobe.OutfitSuggestion, bool)
	SetOutfits(ownerID string, outfits []*wardrobe.OutfitSuggestion)
	InvalidateOutfits(ownerID string)
}

// Cache is the main interface that combines all cache operations
type Cache interface {
	ItemCache
	OutfitCache
	InitializeOwner(ownerID string)
	InvalidateOwner(ownerID string)
	GetAllOwnerIDs() []string
	GetOwnerStats(ownerID string) types.OwnerCacheStats
	PurgeExpired(ownerID string) int
	RemoveIdleOwners(timeout time.Duration) []string
	InvalidateAll()
	Health() map[string]any
}

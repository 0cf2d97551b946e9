// Package types defines cache data structures for per-owner wardrobe data.
package types

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

// CachedItem is a single cached wardrobe record.
type CachedItem struct {
	Item     *wardrobe.Item
	CachedAt time.Time
}

// OwnerItemCache holds the item records of a single owner
type OwnerItemCache struct {
	Items map[string]*CachedItem // itemId -> entry

	Hits   atomic.Int64
	Misses atomic.Int64

	LastUpdated time.Time
	Mu          sync.RWMutex // Exported for access
}

// OwnerOutfitCache holds an owner's outfit suggestion list
type OwnerOutfitCache struct {
	Outfits  []*wardrobe.OutfitSuggestion
	LoadedAt time.Time
	Mu       sync.RWMutex
}

// OwnerCacheStats summarises one owner's cache.
type OwnerCacheStats struct {
	OwnerID      string    `json:"ownerId"`
	Items        int       `json:"items"`
	Outfits      int       `json:"outfits"`
	OutfitsReady bool      `json:"outfitsReady"`
	Hits         int64     `json:"hits"`
	Misses       int64     `json:"misses"`
	HitRate      float64   `json:"hitRate"`
	LastUpdated  time.Time `json:"lastUpdated"`
	LastAccessed time.Time `json:"lastAccessed"`
}

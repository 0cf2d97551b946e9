// Package stores provides concrete cache store implementations
package stores

import (
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// ItemStore implements item caching operations with owner isolation
type ItemStore struct {
	ownerCaches map[string]*types.OwnerItemCache
	ttl         time.Duration
	mu          sync.RWMutex
	logger      *logging.ChanneledLogger
}

// NewItemStore creates a new item cache store. A ttl of zero disables expiry.
func NewItemStore(ttl time.Duration, logger *logging.ChanneledLogger) *ItemStore {
	if logger != nil {
		logger.Cache().Info("Initializing item cache store", "ttl", ttl)
	}
	return &ItemStore{
		ownerCaches: make(map[string]*types.OwnerItemCache),
		ttl:         ttl,
		logger:      logger,
	}
}

// InitializeOwner creates cache structures for an owner
func (s *ItemStore) InitializeOwner(ownerID string) *types.OwnerItemCache {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, exists := s.ownerCaches[ownerID]
	if !exists {
		cache = &types.OwnerItemCache{
			Items:       make(map[string]*types.CachedItem),
			LastUpdated: time.Now().UTC(),
		}
		s.ownerCaches[ownerID] = cache
	}
	return cache
}

// GetOwnerCache safely retrieves an owner's item cache
func (s *ItemStore) GetOwnerCache(ownerID string) (*types.OwnerItemCache, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cache, exists := s.ownerCaches[ownerID]
	return cache, exists
}

// GetAllOwnerIDs returns all owner IDs present in the store
func (s *ItemStore) GetAllOwnerIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ownerCaches))
	for id := range s.ownerCaches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetItem retrieves an item, treating entries older than the TTL as absent.
// A read for an unknown owner creates its cache so the miss is counted.
func (s *ItemStore) GetItem(ownerID, itemID string) (*wardrobe.Item, bool) {
	start := time.Now()
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		cache = s.InitializeOwner(ownerID)
	}

	cache.Mu.RLock()
	entry, found := cache.Items[itemID]
	cache.Mu.RUnlock()

	hit := found && !s.expired(entry)
	if hit {
		cache.Hits.Add(1)
	} else {
		cache.Misses.Add(1)
	}
	if s.logger != nil {
		s.logger.LogCacheOperation("get", itemID, hit, time.Since(start), ownerID)
	}
	if !hit {
		return nil, false
	}
	return entry.Item, true
}

// SetItem stores an item, overwriting any existing entry
func (s *ItemStore) SetItem(ownerID string, item *wardrobe.Item) {
	if item == nil || item.ID == "" {
		return
	}
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		cache = s.InitializeOwner(ownerID)
	}

	now := time.Now().UTC()
	cache.Mu.Lock()
	defer cache.Mu.Unlock()
	cache.Items[item.ID] = &types.CachedItem{Item: item, CachedAt: now}
	cache.LastUpdated = now
}

// SetItems stores several items under one lock
func (s *ItemStore) SetItems(ownerID string, items []*wardrobe.Item) {
	if len(items) == 0 {
		return
	}
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		cache = s.InitializeOwner(ownerID)
	}

	now := time.Now().UTC()
	cache.Mu.Lock()
	defer cache.Mu.Unlock()
	for _, item := range items {
		if item == nil || item.ID == "" {
			continue
		}
		cache.Items[item.ID] = &types.CachedItem{Item: item, CachedAt: now}
	}
	cache.LastUpdated = now
}

// InvalidateItem removes a single item
func (s *ItemStore) InvalidateItem(ownerID, itemID string) {
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		return
	}
	cache.Mu.Lock()
	defer cache.Mu.Unlock()
	delete(cache.Items, itemID)
	cache.LastUpdated = time.Now().UTC()
}

// GetAllItemIDs returns the IDs of all live entries for an owner
func (s *ItemStore) GetAllItemIDs(ownerID string) []string {
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		return []string{}
	}
	cache.Mu.RLock()
	defer cache.Mu.RUnlock()
	ids := make([]string, 0, len(cache.Items))
	for id, entry := range cache.Items {
		if !s.expired(entry) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// InvalidateOwner clears every entry for an owner but keeps its counters
func (s *ItemStore) InvalidateOwner(ownerID string) {
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		return
	}
	cache.Mu.Lock()
	defer cache.Mu.Unlock()
	cache.Items = make(map[string]*types.CachedItem)
	cache.LastUpdated = time.Now().UTC()
}

// RemoveOwner drops an owner's cache entirely
func (s *ItemStore) RemoveOwner(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ownerCaches, ownerID)
}

// PurgeExpired deletes entries past the TTL and returns how many were removed
func (s *ItemStore) PurgeExpired(ownerID string) int {
	if s.ttl <= 0 {
		return 0
	}
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		return 0
	}
	cache.Mu.Lock()
	defer cache.Mu.Unlock()
	removed := 0
	for id, entry := range cache.Items {
		if s.expired(entry) {
			delete(cache.Items, id)
			removed++
		}
	}
	return removed
}

// Stats fills the item-related fields of an owner's stats
func (s *ItemStore) Stats(ownerID string) types.OwnerCacheStats {
	stats := types.OwnerCacheStats{OwnerID: ownerID}
	cache, exists := s.GetOwnerCache(ownerID)
	if !exists {
		return stats
	}
	cache.Mu.RLock()
	stats.Items = len(cache.Items)
	stats.LastUpdated = cache.LastUpdated
	cache.Mu.RUnlock()

	stats.Hits = cache.Hits.Load()
	stats.Misses = cache.Misses.Load()
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (s *ItemStore) expired(entry *types.CachedItem) bool {
	return s.ttl > 0 && time.Since(entry.CachedAt) > s.ttl
}

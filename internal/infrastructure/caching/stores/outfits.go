package stores

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// OutfitStore caches each owner's outfit suggestion list
type OutfitStore struct {
	ownerCaches map[string]*types.OwnerOutfitCache
	ttl         time.Duration
	mu          sync.RWMutex
	logger      *logging.ChanneledLogger
}

func NewOutfitStore(ttl time.Duration, logger *logging.ChanneledLogger) *OutfitStore {
	if logger != nil {
		logger.Cache().Info("Initializing outfit cache store", "ttl", ttl)
	}
	return &OutfitStore{
		ownerCaches: make(map[string]*types.OwnerOutfitCache),
		ttl:         ttl,
		logger:      logger,
	}
}

func (s *OutfitStore) getOwnerCache(ownerID string, create bool) *types.OwnerOutfitCache {
	s.mu.RLock()
	cache := s.ownerCaches[ownerID]
	s.mu.RUnlock()
	if cache != nil || !create {
		return cache
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cache = s.ownerCaches[ownerID]; cache == nil {
		cache = &types.OwnerOutfitCache{}
		s.ownerCaches[ownerID] = cache
	}
	return cache
}

// GetOutfits returns the cached list if it was loaded and has not expired
func (s *OutfitStore) GetOutfits(ownerID string) ([]*wardrobe.OutfitSuggestion, bool) {
	cache := s.getOwnerCache(ownerID, false)
	if cache == nil {
		return nil, false
	}
	cache.Mu.RLock()
	defer cache.Mu.RUnlock()
	if cache.Outfits == nil {
		return nil, false
	}
	if s.ttl > 0 && time.Since(cache.LoadedAt) > s.ttl {
		return nil, false
	}
	return cache.Outfits, true
}

// SetOutfits replaces the cached list
func (s *OutfitStore) SetOutfits(ownerID string, outfits []*wardrobe.OutfitSuggestion) {
	if outfits == nil {
		outfits = []*wardrobe.OutfitSuggestion{}
	}
	cache := s.getOwnerCache(ownerID, true)
	cache.Mu.Lock()
	defer cache.Mu.Unlock()
	cache.Outfits = outfits
	cache.LoadedAt = time.Now().UTC()
}

// InvalidateOutfits forces the next read to go to the database
func (s *OutfitStore) InvalidateOutfits(ownerID string) {
	cache := s.getOwnerCache(ownerID, false)
	if cache == nil {
		return
	}
	cache.Mu.Lock()
	defer cache.Mu.Unlock()
	cache.Outfits = nil
}

// RemoveOwner drops an owner's outfit cache entirely
func (s *OutfitStore) RemoveOwner(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ownerCaches, ownerID)
}

// Count returns the number of cached outfits and whether a list is loaded
func (s *OutfitStore) Count(ownerID string) (int, bool) {
	outfits, ok := s.GetOutfits(ownerID)
	return len(outfits), ok
}

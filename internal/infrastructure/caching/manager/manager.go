// Package manager provides centralized cache operations with per-owner isolation
package manager

import (
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/pkg/config"
)

// Interface assertions to ensure Manager implements all required interfaces.
var (
	_ interfaces.Cache      = (*Manager)(nil)
	_ resolution.ItemWriter = (*Manager)(nil)
)

// Manager provides centralized cache operations by delegating to specialized stores.
type Manager struct {
	Mu           sync.RWMutex
	LastAccessed map[string]time.Time
	itemStore    *stores.ItemStore
	outfitStore  *stores.OutfitStore
	logger       *logging.ChanneledLogger
}

// NewManager creates a manager using the configured TTLs.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	return NewManagerWithTTL(config.ItemCacheTTL, config.OutfitCacheTTL, logger)
}

func NewManagerWithTTL(itemTTL, outfitTTL time.Duration, logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"items", "outfits"})
	}

	return &Manager{
		LastAccessed: make(map[string]time.Time),
		itemStore:    stores.NewItemStore(itemTTL, logger),
		outfitStore:  stores.NewOutfitStore(outfitTTL, logger),
		logger:       logger,
	}
}

func (m *Manager) updateOwnerAccessTime(ownerID string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.LastAccessed[ownerID] = time.Now().UTC()
}

func (m *Manager) InitializeOwner(ownerID string) {
	m.itemStore.InitializeOwner(ownerID)
	m.updateOwnerAccessTime(ownerID)
	if m.logger != nil {
		m.logger.Cache().Debug("Owner cache initialized", "ownerId", ownerID)
	}
}

// Accessor binds the item cache of ownerID to the resolution cache lookup.
func (m *Manager) Accessor(ownerID string) resolution.CacheAccessor {
	m.updateOwnerAccessTime(ownerID)
	return resolution.CacheAccessorFunc(func(itemID string) (*wardrobe.Item, bool) {
		return m.itemStore.GetItem(ownerID, itemID)
	})
}

// =============================================================================
// Item Operations
// =============================================================================

func (m *Manager) GetItem(ownerID, itemID string) (*wardrobe.Item, bool) {
	m.updateOwnerAccessTime(ownerID)
	return m.itemStore.GetItem(ownerID, itemID)
}

func (m *Manager) SetItem(ownerID string, item *wardrobe.Item) {
	m.updateOwnerAccessTime(ownerID)
	m.itemStore.SetItem(ownerID, item)
}

func (m *Manager) SetItems(ownerID string, items []*wardrobe.Item) {
	m.updateOwnerAccessTime(ownerID)
	m.itemStore.SetItems(ownerID, items)
}

func (m *Manager) InvalidateItem(ownerID, itemID string) {
	m.itemStore.InvalidateItem(ownerID, itemID)
	if m.logger != nil {
		m.logger.Cache().Debug("Item invalidated", "ownerId", ownerID, "itemId", itemID)
	}
}

func (m *Manager) GetAllItemIDs(ownerID string) []string {
	return m.itemStore.GetAllItemIDs(ownerID)
}

// =============================================================================
// Outfit Operations
// =============================================================================

func (m *Manager) GetOutfits(ownerID string) ([]*wardrobe.OutfitSuggestion, bool) {
	m.updateOwnerAccessTime(ownerID)
	return m.outfitStore.GetOutfits(ownerID)
}

func (m *Manager) SetOutfits(ownerID string, outfits []*wardrobe.OutfitSuggestion) {
	m.updateOwnerAccessTime(ownerID)
	m.outfitStore.SetOutfits(ownerID, outfits)
}

func (m *Manager) InvalidateOutfits(ownerID string) {
	m.outfitStore.InvalidateOutfits(ownerID)
}

// =============================================================================
// Owner Lifecycle
// =============================================================================

func (m *Manager) InvalidateOwner(ownerID string) {
	start := time.Now()
	m.itemStore.InvalidateOwner(ownerID)
	m.outfitStore.InvalidateOutfits(ownerID)
	m.updateOwnerAccessTime(ownerID)

	if m.logger != nil {
		m.logger.Cache().Info("Owner cache invalidated", "ownerId", ownerID, "duration", time.Since(start))
	}
}

// GetAllOwnerIDs returns every owner with cached state
func (m *Manager) GetAllOwnerIDs() []string {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	ids := make([]string, 0, len(m.LastAccessed))
	for id := range m.LastAccessed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) GetOwnerStats(ownerID string) types.OwnerCacheStats {
	stats := m.itemStore.Stats(ownerID)
	stats.Outfits, stats.OutfitsReady = m.outfitStore.Count(ownerID)

	m.Mu.RLock()
	stats.LastAccessed = m.LastAccessed[ownerID]
	m.Mu.RUnlock()
	return stats
}

func (m *Manager) PurgeExpired(ownerID string) int {
	removed := m.itemStore.PurgeExpired(ownerID)
	if removed > 0 && m.logger != nil {
		m.logger.Cache().Debug("Purged expired items", "ownerId", ownerID, "removed", removed)
	}
	return removed
}

// RemoveIdleOwners drops every owner not accessed within timeout and returns their IDs
func (m *Manager) RemoveIdleOwners(timeout time.Duration) []string {
	if timeout <= 0 {
		return nil
	}
	m.Mu.Lock()
	var idle []string
	for ownerID, last := range m.LastAccessed {
		if time.Since(last) > timeout {
			idle = append(idle, ownerID)
			delete(m.LastAccessed, ownerID)
		}
	}
	m.Mu.Unlock()

	sort.Strings(idle)
	for _, ownerID := range idle {
		m.itemStore.RemoveOwner(ownerID)
		m.outfitStore.RemoveOwner(ownerID)
	}
	if len(idle) > 0 && m.logger != nil {
		m.logger.Cache().Info("Removed idle owner caches", "owners", len(idle), "timeout", timeout)
	}
	return idle
}

func (m *Manager) InvalidateAll() {
	for _, ownerID := range m.GetAllOwnerIDs() {
		m.InvalidateOwner(ownerID)
	}
}

func (m *Manager) Health() map[string]any {
	owners := m.GetAllOwnerIDs()
	items := 0
	for _, ownerID := range owners {
		items += len(m.itemStore.GetAllItemIDs(ownerID))
	}
	return map[string]any{
		"status": "ok",
		"owners": len(owners),
		"items":  items,
	}
}

package stores

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/types"
)

func testItem(id string) *wardrobe.Item {
	name := "Item " + id
	return &wardrobe.Item{ID: id, OwnerID: "owner-1", Name: &name}
}

func TestItemStoreSetGet(t *testing.T) {
	s := NewItemStore(time.Hour, nil)

	_, ok := s.GetItem("owner-1", "a")
	assert.False(t, ok)

	s.SetItem("owner-1", testItem("a"))
	got, ok := s.GetItem("owner-1", "a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	_, ok = s.GetItem("owner-2", "a")
	assert.False(t, ok, "owners are isolated")

	stats := s.Stats("owner-1")
	assert.Equal(t, 1, stats.Items)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestItemStoreCountsColdOwnerMisses(t *testing.T) {
	s := NewItemStore(time.Hour, nil)

	for i := 0; i < 3; i++ {
		_, ok := s.GetItem("owner-cold", "a")
		assert.False(t, ok)
	}

	stats := s.Stats("owner-cold")
	assert.Zero(t, stats.Items)
	assert.Zero(t, stats.Hits)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Zero(t, stats.HitRate)
}

func TestItemStoreOverwriteAndInvalidate(t *testing.T) {
	s := NewItemStore(0, nil)
	s.SetItems("owner-1", []*wardrobe.Item{testItem("a"), nil, testItem("b")})

	renamed := testItem("a")
	newName := "Renamed"
	renamed.Name = &newName
	s.SetItem("owner-1", renamed)

	got, _ := s.GetItem("owner-1", "a")
	assert.Equal(t, "Renamed", got.TrimmedName())
	assert.Equal(t, []string{"a", "b"}, s.GetAllItemIDs("owner-1"))

	s.InvalidateItem("owner-1", "a")
	assert.Equal(t, []string{"b"}, s.GetAllItemIDs("owner-1"))

	s.InvalidateOwner("owner-1")
	assert.Empty(t, s.GetAllItemIDs("owner-1"))
	assert.Equal(t, []string{"owner-1"}, s.GetAllOwnerIDs())

	s.RemoveOwner("owner-1")
	assert.Empty(t, s.GetAllOwnerIDs())
}

func TestItemStoreTTL(t *testing.T) {
	s := NewItemStore(time.Minute, nil)
	s.SetItem("owner-1", testItem("fresh"))
	s.SetItem("owner-1", testItem("stale"))

	cache, ok := s.GetOwnerCache("owner-1")
	require.True(t, ok)
	cache.Mu.Lock()
	cache.Items["stale"] = &types.CachedItem{Item: testItem("stale"), CachedAt: time.Now().Add(-2 * time.Minute)}
	cache.Mu.Unlock()

	_, ok = s.GetItem("owner-1", "stale")
	assert.False(t, ok)
	assert.Equal(t, []string{"fresh"}, s.GetAllItemIDs("owner-1"))

	assert.Equal(t, 1, s.PurgeExpired("owner-1"))
	assert.Equal(t, 1, s.Stats("owner-1").Items)
	assert.Zero(t, s.PurgeExpired("nobody"))
}

func TestItemStoreIgnoresInvalidItems(t *testing.T) {
	s := NewItemStore(0, nil)
	s.SetItem("owner-1", nil)
	s.SetItem("owner-1", &wardrobe.Item{})
	assert.Empty(t, s.GetAllItemIDs("owner-1"))
}

func TestOutfitStore(t *testing.T) {
	s := NewOutfitStore(time.Hour, nil)

	_, ok := s.GetOutfits("owner-1")
	assert.False(t, ok)

	s.SetOutfits("owner-1", nil)
	outfits, ok := s.GetOutfits("owner-1")
	assert.True(t, ok, "an empty list is still a loaded list")
	assert.Empty(t, outfits)

	s.SetOutfits("owner-1", []*wardrobe.OutfitSuggestion{{ID: "o1"}, {ID: "o2"}})
	n, ok := s.Count("owner-1")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	s.InvalidateOutfits("owner-1")
	_, ok = s.GetOutfits("owner-1")
	assert.False(t, ok)
}

func TestOutfitStoreTTL(t *testing.T) {
	s := NewOutfitStore(time.Minute, nil)
	s.SetOutfits("owner-1", []*wardrobe.OutfitSuggestion{{ID: "o1"}})

	cache := s.getOwnerCache("owner-1", false)
	require.NotNil(t, cache)
	cache.Mu.Lock()
	cache.LoadedAt = time.Now().Add(-time.Hour)
	cache.Mu.Unlock()

	_, ok := s.GetOutfits("owner-1")
	assert.False(t, ok)
}

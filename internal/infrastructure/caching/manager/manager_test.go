package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

func item(id string) *wardrobe.Item {
	return &wardrobe.Item{ID: id, OwnerID: "owner-1"}
}

func TestAccessorReadsOwnerItems(t *testing.T) {
	m := NewManagerWithTTL(time.Hour, time.Hour, logging.NewNopLogger())
	m.SetItem("owner-1", item("a"))
	m.SetItem("owner-2", item("b"))

	acc := m.Accessor("owner-1")
	got, ok := acc.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	_, ok = acc.Lookup("b")
	assert.False(t, ok)
}

func TestAccessorCountsColdOwnerMisses(t *testing.T) {
	m := NewManagerWithTTL(time.Hour, time.Hour, nil)
	acc := m.Accessor("owner-cold")
	for _, id := range []string{"a", "b", "c"} {
		_, ok := acc.Lookup(id)
		assert.False(t, ok)
	}

	stats := m.GetOwnerStats("owner-cold")
	assert.Zero(t, stats.Hits)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Zero(t, stats.HitRate)
	assert.Contains(t, m.GetAllOwnerIDs(), "owner-cold")
}

func TestOwnerStatsAndInvalidation(t *testing.T) {
	m := NewManagerWithTTL(time.Hour, time.Hour, nil)
	m.SetItems("owner-1", []*wardrobe.Item{item("a"), item("b")})
	m.SetOutfits("owner-1", []*wardrobe.OutfitSuggestion{{ID: "o1"}})
	m.GetItem("owner-1", "a")
	m.GetItem("owner-1", "zzz")

	stats := m.GetOwnerStats("owner-1")
	assert.Equal(t, 2, stats.Items)
	assert.Equal(t, 1, stats.Outfits)
	assert.True(t, stats.OutfitsReady)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.False(t, stats.LastAccessed.IsZero())

	m.InvalidateOwner("owner-1")
	stats = m.GetOwnerStats("owner-1")
	assert.Zero(t, stats.Items)
	assert.False(t, stats.OutfitsReady)
}

func TestRemoveIdleOwners(t *testing.T) {
	m := NewManagerWithTTL(time.Hour, time.Hour, nil)
	m.SetItem("idle", item("a"))
	m.SetItem("busy", item("b"))

	m.Mu.Lock()
	m.LastAccessed["idle"] = time.Now().Add(-2 * time.Hour)
	m.Mu.Unlock()

	removed := m.RemoveIdleOwners(time.Hour)
	assert.Equal(t, []string{"idle"}, removed)
	assert.Equal(t, []string{"busy"}, m.GetAllOwnerIDs())
	assert.Empty(t, m.GetAllItemIDs("idle"))
	assert.Nil(t, m.RemoveIdleOwners(0))
}

func TestInvalidateAllAndHealth(t *testing.T) {
	m := NewManagerWithTTL(0, 0, nil)
	m.SetItem("owner-1", item("a"))
	m.SetItem("owner-2", item("b"))
	assert.Equal(t, 2, m.Health()["items"])

	m.InvalidateAll()
	health := m.Health()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 2, health["owners"])
	assert.Equal(t, 0, health["items"])
}

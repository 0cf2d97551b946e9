package wardrobe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/repositories"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/manager"
	schema "github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

type fixture struct {
	db      *sql.DB
	cache   *manager.Manager
	items   *ItemRepository
	outfits *OutfitRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, schema.NewTableCreator().CreateSchema(db))

	logger := logging.NewNopLogger()
	cache := manager.NewManagerWithTTL(time.Hour, time.Hour, logger)
	return &fixture{
		db:      db,
		cache:   cache,
		items:   NewItemRepository(db, cache, logger),
		outfits: NewOutfitRepository(db, cache, logger),
	}
}

func str(s string) *string { return &s }

func (f *fixture) storeItem(t *testing.T, id, owner string, name, itemType *string, colour ...string) *wardrobe.Item {
	t.Helper()
	item := &wardrobe.Item{
		ID:       id,
		OwnerID:  owner,
		Name:     name,
		ThumbKey: str("thumbs/" + id + ".webp"),
		Detail:   &wardrobe.ItemDetail{Type: itemType, Colour: colour},
	}
	require.NoError(t, f.items.Store(context.Background(), item))
	return item
}

func TestFetchItemsPartialAndOwnerScoped(t *testing.T) {
	f := newFixture(t)
	f.storeItem(t, "a", "owner-1", nil, str("blazer"), "navy", "grey")
	f.storeItem(t, "b", "owner-2", str("Not yours"), nil)

	items, err := f.items.FetchItems(context.Background(), "owner-1", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	a := items["a"]
	require.NotNil(t, a)
	assert.True(t, a.HasDetail())
	assert.Equal(t, "blazer", a.DetectedType())
	assert.Equal(t, []string{"navy", "grey"}, a.Detail.Colour)
	assert.Equal(t, "thumbs/a.webp", *a.ThumbKey)
	assert.Nil(t, a.Name)
}

func TestFetchItemsDoesNotWriteCache(t *testing.T) {
	f := newFixture(t)
	f.storeItem(t, "a", "owner-1", str("A"), nil)
	f.cache.InvalidateOwner("owner-1")

	_, err := f.items.FetchItems(context.Background(), "owner-1", []string{"a"})
	require.NoError(t, err)
	_, cached := f.cache.GetItem("owner-1", "a")
	assert.False(t, cached)
}

func TestFindAllUsesMinimalProjection(t *testing.T) {
	f := newFixture(t)
	f.storeItem(t, "a", "owner-1", str("A"), str("coat"), "black")
	f.cache.InvalidateOwner("owner-1")

	items, err := f.items.FindAll(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].HasDetail())

	cached, ok := f.cache.GetItem("owner-1", "a")
	require.True(t, ok)
	assert.Equal(t, wardrobe.ProjectionMinimal, cached.Projection())

	detailed, err := f.items.FetchItems(context.Background(), "owner-1", []string{"a"})
	require.NoError(t, err)
	assert.True(t, detailed["a"].HasDetail())

	found, err := f.items.FindByID(context.Background(), "owner-1", "a")
	require.NoError(t, err)
	assert.True(t, found.HasDetail(), "minimal cache entry must not satisfy a detailed lookup")
}

func TestUpdateOverwritesCacheAndDeleteInvalidates(t *testing.T) {
	f := newFixture(t)
	item := f.storeItem(t, "a", "owner-1", str("Old"), nil)
	ctx := context.Background()

	item.Name = str("New")
	require.NoError(t, f.items.Update(ctx, item))
	cached, ok := f.cache.GetItem("owner-1", "a")
	require.True(t, ok)
	assert.Equal(t, "New", cached.TrimmedName())
	assert.NotNil(t, cached.Changed)

	found, err := f.items.FindByID(ctx, "owner-1", "a")
	require.NoError(t, err)
	assert.Equal(t, "New", found.TrimmedName())

	require.NoError(t, f.items.Delete(ctx, "owner-1", "a"))
	_, ok = f.cache.GetItem("owner-1", "a")
	assert.False(t, ok)

	assert.ErrorIs(t, f.items.Delete(ctx, "owner-1", "a"), repositories.ErrNotFound)
	missing := &wardrobe.Item{ID: "zzz", OwnerID: "owner-1"}
	assert.ErrorIs(t, f.items.Update(ctx, missing), repositories.ErrNotFound)

	gone, err := f.items.FindByID(ctx, "owner-1", "a")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDuplicateInsertIsClassifiedServer(t *testing.T) {
	f := newFixture(t)
	f.storeItem(t, "a", "owner-1", str("A"), nil)

	err := f.items.Store(context.Background(), &wardrobe.Item{ID: "a", OwnerID: "owner-1"})
	require.Error(t, err)

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "23000", be.Code)
	assert.Equal(t, resolution.ErrorServer, resolution.ClassifyError(err).Code)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError("op", nil))

	plain := translateError("op", errors.New("boom"))
	var be *BackendError
	assert.False(t, errors.As(plain, &be))
	assert.Equal(t, "op: boom", plain.Error())

	perm := translateError("op", fmt.Errorf("wrapped: %w", sqlite3.Error{Code: sqlite3.ErrPerm}))
	require.ErrorAs(t, perm, &be)
	assert.Equal(t, "42501", be.BackendCode())
	assert.Equal(t, resolution.ErrorAuth, resolution.ClassifyError(perm).Code)

	busy := translateError("op", sqlite3.Error{Code: sqlite3.ErrBusy})
	require.ErrorAs(t, busy, &be)
	assert.Equal(t, "58000", be.Code)
}

func TestOutfitRepositoryKeepsRawItemIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.outfits.Store(ctx, &wardrobe.OutfitSuggestion{ID: "o1", OwnerID: "owner-1", Title: "Office", ItemIDs: []string{"a", "b"}}))
	require.NoError(t, f.outfits.Store(ctx, &wardrobe.OutfitSuggestion{ID: "o2", OwnerID: "owner-1", Title: "Odd", ItemIDs: map[string]any{"x": 1}}))
	_, err := f.db.Exec(`INSERT INTO outfit_suggestions (id, owner_id, title, item_ids) VALUES ('o3', 'owner-1', 'Broken', 'not json')`)
	require.NoError(t, err)

	outfits, err := f.outfits.FindAll(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, outfits, 3)

	byID := map[string]*wardrobe.OutfitSuggestion{}
	for _, o := range outfits {
		byID[o.ID] = o
	}
	assert.Equal(t, []string{"a", "b"}, resolution.NormalizeIDs(byID["o1"].ItemIDs))
	assert.Empty(t, resolution.NormalizeIDs(byID["o2"].ItemIDs))
	assert.Equal(t, "not json", byID["o3"].ItemIDs)

	cached, ok := f.cache.GetOutfits("owner-1")
	require.True(t, ok)
	assert.Len(t, cached, 3)

	require.NoError(t, f.outfits.Delete(ctx, "owner-1", "o3"))
	_, ok = f.cache.GetOutfits("owner-1")
	assert.False(t, ok)
	assert.ErrorIs(t, f.outfits.Delete(ctx, "owner-1", "o3"), repositories.ErrNotFound)

	one, err := f.outfits.FindByID(ctx, "owner-1", "o1")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "Office", one.Title)

	none, err := f.outfits.FindByID(ctx, "owner-2", "o1")
	require.NoError(t, err)
	assert.Nil(t, none)
}

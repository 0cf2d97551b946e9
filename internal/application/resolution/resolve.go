package resolution

import (
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

// CacheAccessor looks up a single item in an owner's cache.
type CacheAccessor interface {
	Lookup(itemID string) (*wardrobe.Item, bool)
}

// CacheAccessorFunc adapts a function to CacheAccessor.
type CacheAccessorFunc func(itemID string) (*wardrobe.Item, bool)

func (f CacheAccessorFunc) Lookup(itemID string) (*wardrobe.Item, bool) { return f(itemID) }

// Resolver maps outfits onto view-models using only what a CacheAccessor holds.
type Resolver struct {
	builder *ViewModelBuilder
}

func NewResolver(builder *ViewModelBuilder) *Resolver {
	if builder == nil {
		builder = NewViewModelBuilder(nil)
	}
	return &Resolver{builder: builder}
}

// Resolve builds one view-model per normalized reference of every outfit, in
// reference order. References the accessor cannot answer become missing
// view-models and are collected, once each, in UncachedIDs. Every outfit ID is
// present in ResolvedOutfits, including outfits with no valid references.
func (r *Resolver) Resolve(outfits []*wardrobe.OutfitSuggestion, cache CacheAccessor) wardrobe.ItemResolutionResult {
	result := wardrobe.ItemResolutionResult{
		ResolvedOutfits: make(map[string][]wardrobe.OutfitItemViewModel, len(outfits)),
		UncachedIDs:     []string{},
	}
	seen := make(map[string]struct{})

	for _, outfit := range outfits {
		if outfit == nil {
			continue
		}
		ids := NormalizeIDs(outfit.ItemIDs)
		items := make([]wardrobe.OutfitItemViewModel, 0, len(ids))
		for _, id := range ids {
			if item, ok := lookup(cache, id); ok {
				items = append(items, r.builder.BuildResolved(id, item))
				continue
			}
			items = append(items, r.builder.BuildMissing(id))
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				result.UncachedIDs = append(result.UncachedIDs, id)
			}
		}
		result.ResolvedOutfits[outfit.ID] = items
	}
	return result
}

// lookup treats a nil accessor, a nil item or a panicking accessor as a miss.
func lookup(cache CacheAccessor, id string) (item *wardrobe.Item, ok bool) {
	if cache == nil {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			item, ok = nil, false
		}
	}()
	item, ok = cache.Lookup(id)
	return item, ok && item != nil
}

package resolution

import (
	"context"
	"sync"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

func strPtr(s string) *string { return &s }

type memCache struct {
	mu     sync.Mutex
	items  map[string]*wardrobe.Item
	writes int
}

func newMemCache(items ...*wardrobe.Item) *memCache {
	c := &memCache{items: make(map[string]*wardrobe.Item)}
	for _, item := range items {
		c.items[item.ID] = item
	}
	return c
}

func (c *memCache) Lookup(id string) (*wardrobe.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	return item, ok
}

func (c *memCache) SetItem(_ string, item *wardrobe.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
	c.writes++
}

func (c *memCache) has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	fn    func(ids []string) (map[string]*wardrobe.Item, error)
}

func (s *countingSource) FetchItems(_ context.Context, _ string, ids []string) (map[string]*wardrobe.Item, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(ids)
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func item(id string) *wardrobe.Item {
	return &wardrobe.Item{ID: id, OwnerID: "owner-1", Name: strPtr("Item " + id)}
}

func outfit(id string, ids any) *wardrobe.OutfitSuggestion {
	return &wardrobe.OutfitSuggestion{ID: id, ItemIDs: ids}
}

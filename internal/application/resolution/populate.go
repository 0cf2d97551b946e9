package resolution

import (
	"fmt"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// ItemWriter stores an item in an owner's cache, overwriting any existing entry.
type ItemWriter interface {
	SetItem(ownerID string, item *wardrobe.Item)
}

// CacheSink writes batch results into the shared item cache.
type CacheSink struct {
	writer ItemWriter
	logger *logging.ChanneledLogger
}

func NewCacheSink(writer ItemWriter, logger *logging.ChanneledLogger) *CacheSink {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CacheSink{writer: writer, logger: logger}
}

// Populate stores every item under (ownerID, id). Failures are logged and
// swallowed; the caller keeps its copy of items either way.
func (s *CacheSink) Populate(ownerID string, items map[string]*wardrobe.Item) {
	if s == nil || s.writer == nil || len(items) == 0 {
		return
	}
	written := 0
	for id, item := range items {
		if item == nil {
			continue
		}
		if err := s.write(ownerID, id, item); err != nil {
			s.logger.LogError(logging.ChannelCache, "populate", err, ownerID, map[string]any{"itemId": id})
			continue
		}
		written++
	}
	s.logger.WithOwner(logging.ChannelCache, ownerID).Debug("Populated item cache from batch",
		"written", written, "received", len(items))
}

func (s *CacheSink) write(ownerID, id string, item *wardrobe.Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache write panicked: %v", r)
		}
	}()
	if item.ID != id {
		cp := *item
		cp.ID = id
		item = &cp
	}
	s.writer.SetItem(ownerID, item)
	return nil
}

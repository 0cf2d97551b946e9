package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/repositories"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/security"
)

// ImageStore ingests and removes item images.
type ImageStore interface {
	ProcessItemImage(ownerID, itemID, data string) (*media.ImageKeys, error)
	DeleteItemImages(keys ...*string) error
}

// CreateItemInput is the payload for a new wardrobe item. ImageData is an
// optional base64 data URI.
type CreateItemInput struct {
	Name      *string  `json:"name"`
	Type      *string  `json:"type"`
	Colour    []string `json:"colour"`
	ImageData string   `json:"imageData"`
}

// UpdateItemInput carries the fields to change. Nil fields are left alone.
type UpdateItemInput struct {
	Name   *string   `json:"name"`
	Type   *string   `json:"type"`
	Colour *[]string `json:"colour"`
}

// ItemLookup is the outcome of a multi-item read.
type ItemLookup struct {
	Items      []*wardrobe.Item `json:"items"`
	MissingIDs []string         `json:"missingIds"`
	CacheHits  int              `json:"cacheHits"`
}

// ItemService orchestrates item reads and writes for a single owner at a time.
type ItemService struct {
	items   repositories.ItemRepository
	cache   interfaces.ItemCache
	fetcher resolution.Fetcher
	sink    *resolution.CacheSink
	images  ImageStore
	logger  *logging.ChanneledLogger
}

// NewItemService creates an item service. images may be nil, in which case
// image uploads are rejected.
func NewItemService(items repositories.ItemRepository, cache interfaces.ItemCache, fetcher resolution.Fetcher, sink *resolution.CacheSink, images ImageStore, logger *logging.ChanneledLogger) *ItemService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ItemService{
		items:   items,
		cache:   cache,
		fetcher: fetcher,
		sink:    sink,
		images:  images,
		logger:  logger,
	}
}

// List returns every item of the owner in the minimal projection.
func (s *ItemService) List(ctx context.Context, ownerID string) ([]*wardrobe.Item, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	items, err := s.items.FindAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetByID returns the detailed item or repositories.ErrNotFound.
func (s *ItemService) GetByID(ctx context.Context, ownerID, id string) (*wardrobe.Item, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, invalid("item ID cannot be empty")
	}
	item, err := s.items.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", id, repositories.ErrNotFound)
	}
	return item, nil
}

// GetByIDs serves detailed items from the cache and fetches the remainder in a
// single batch. Items come back in request order; unknown IDs are reported in
// MissingIDs.
func (s *ItemService) GetByIDs(ctx context.Context, ownerID string, ids []string) (*ItemLookup, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	ids = uniqueIDs(resolution.NormalizeIDs(ids))
	lookup := &ItemLookup{Items: []*wardrobe.Item{}, MissingIDs: []string{}}
	if len(ids) == 0 {
		return lookup, nil
	}

	found := make(map[string]*wardrobe.Item, len(ids))
	var residual []string
	for _, id := range ids {
		if item, ok := s.cache.GetItem(ownerID, id); ok && item.HasDetail() {
			found[id] = item
			lookup.CacheHits++
			continue
		}
		residual = append(residual, id)
	}

	if len(residual) > 0 {
		batch, err := s.fetcher.FetchBatch(ctx, ownerID, residual)
		if err != nil {
			return nil, resolution.ClassifyError(err)
		}
		s.sink.Populate(ownerID, batch.Items)
		for id, item := range batch.Items {
			found[id] = item
		}
	}

	for _, id := range ids {
		if item, ok := found[id]; ok {
			lookup.Items = append(lookup.Items, item)
		} else {
			lookup.MissingIDs = append(lookup.MissingIDs, id)
		}
	}

	s.logger.WithOwner(logging.ChannelItems, ownerID).Debug("Items looked up",
		"requested", len(ids), "cacheHits", lookup.CacheHits,
		"fetched", len(residual), "missing", len(lookup.MissingIDs))
	return lookup, nil
}

// Create stores a new item, ingesting its image first when one is supplied.
func (s *ItemService) Create(ctx context.Context, ownerID string, input CreateItemInput) (*wardrobe.Item, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if input.ImageData != "" && s.images == nil {
		return nil, invalid("image uploads are not enabled")
	}

	item := &wardrobe.Item{
		ID:      security.GenerateULID(),
		OwnerID: ownerID,
		Name:    trimmedOrNil(input.Name),
		Detail: &wardrobe.ItemDetail{
			Type:   trimmedOrNil(input.Type),
			Colour: cleanColours(input.Colour),
		},
		Created: time.Now().UTC(),
	}

	var keys *media.ImageKeys
	if input.ImageData != "" {
		var err error
		keys, err = s.images.ProcessItemImage(ownerID, item.ID, input.ImageData)
		if err != nil {
			return nil, invalid("image rejected: %v", err)
		}
		item.OriginalKey = &keys.Original
		item.CleanKey = &keys.Clean
		item.ThumbKey = &keys.Thumb
	}

	if err := s.items.Store(ctx, item); err != nil {
		if keys != nil {
			if rmErr := s.images.DeleteItemImages(item.OriginalKey, item.CleanKey, item.ThumbKey); rmErr != nil {
				s.logger.LogError(logging.ChannelItems, "create_item_cleanup", rmErr, ownerID, map[string]any{"itemId": item.ID})
			}
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.WithOwner(logging.ChannelItems, ownerID).Info("Item created", "itemId", item.ID, "hasImage", keys != nil)
	return item, nil
}

// Update applies the non-nil fields of input to an existing item.
func (s *ItemService) Update(ctx context.Context, ownerID, id string, input UpdateItemInput) (*wardrobe.Item, error) {
	current, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	detail := wardrobe.ItemDetail{}
	if current.Detail != nil {
		detail = *current.Detail
	}
	if input.Name != nil {
		updated.Name = trimmedOrNil(input.Name)
	}
	if input.Type != nil {
		detail.Type = trimmedOrNil(input.Type)
	}
	if input.Colour != nil {
		detail.Colour = cleanColours(*input.Colour)
	}
	updated.Detail = &detail
	now := time.Now().UTC()
	updated.Changed = &now

	if err := s.items.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update item %s: %w", id, err)
	}
	return &updated, nil
}

// Delete removes the item and its image files.
func (s *ItemService) Delete(ctx context.Context, ownerID, id string) error {
	item, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	if s.images != nil {
		if err := s.images.DeleteItemImages(item.OriginalKey, item.CleanKey, item.ThumbKey); err != nil {
			s.logger.LogError(logging.ChannelItems, "delete_item_images", err, ownerID, map[string]any{"itemId": id})
		}
	}
	s.logger.WithOwner(logging.ChannelItems, ownerID).Info("Item deleted", "itemId", id)
	return nil
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return &resolution.FetchError{Code: resolution.ErrorValidation, Message: "owner id is required"}
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cleanColours(colours []string) []string {
	out := make([]string, 0, len(colours))
	for _, c := range colours {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

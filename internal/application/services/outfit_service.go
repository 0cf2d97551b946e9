package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/repositories"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/security"
)

// AccessorProvider hands out the resolution cache view of one owner.
type AccessorProvider interface {
	Accessor(ownerID string) resolution.CacheAccessor
}

// CreateOutfitInput is the payload for a new outfit suggestion. ItemIDs is
// stored exactly as received.
type CreateOutfitInput struct {
	Title    string  `json:"title"`
	Occasion *string `json:"occasion"`
	ItemIDs  any     `json:"itemIds"`
}

// OutfitService stores outfit suggestions and resolves them into display items.
type OutfitService struct {
	outfits      repositories.OutfitRepository
	orchestrator *resolution.Orchestrator
	caches       AccessorProvider
	logger       *logging.ChanneledLogger
}

// NewOutfitService creates an outfit service.
func NewOutfitService(outfits repositories.OutfitRepository, orchestrator *resolution.Orchestrator, caches AccessorProvider, logger *logging.ChanneledLogger) *OutfitService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &OutfitService{
		outfits:      outfits,
		orchestrator: orchestrator,
		caches:       caches,
		logger:       logger,
	}
}

// List returns the owner's outfit suggestions (cache-first).
func (s *OutfitService) List(ctx context.Context, ownerID string) ([]*wardrobe.OutfitSuggestion, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	outfits, err := s.outfits.FindAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	return outfits, nil
}

// Create stores a suggestion. The item list must contain at least one usable ID.
func (s *OutfitService) Create(ctx context.Context, ownerID string, input CreateOutfitInput) (*wardrobe.OutfitSuggestion, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("outfit title cannot be empty")
	}
	if len(resolution.NormalizeIDs(input.ItemIDs)) == 0 {
		return nil, invalid("itemIds must contain at least one item ID")
	}

	outfit := &wardrobe.OutfitSuggestion{
		ID:       security.GenerateULID(),
		OwnerID:  ownerID,
		Title:    title,
		Occasion: trimmedOrNil(input.Occasion),
		ItemIDs:  input.ItemIDs,
		Created:  time.Now().UTC(),
	}
	if err := s.outfits.Store(ctx, outfit); err != nil {
		return nil, fmt.Errorf("failed to create outfit: %w", err)
	}

	s.logger.WithOwner(logging.ChannelOutfits, ownerID).Info("Outfit created", "outfitId", outfit.ID)
	return outfit, nil
}

// Delete removes a suggestion, returning repositories.ErrNotFound when absent.
func (s *OutfitService) Delete(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return invalid("outfit ID cannot be empty")
	}
	if err := s.outfits.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete outfit %s: %w", id, err)
	}
	s.logger.WithOwner(logging.ChannelOutfits, ownerID).Info("Outfit deleted", "outfitId", id)
	return nil
}

// ResolveStored resolves every stored outfit of the owner. An error is
// returned only when the outfits themselves cannot be loaded; item fetch
// failures are reported inside the Result.
func (s *OutfitService) ResolveStored(ctx context.Context, ownerID string, enabled bool) (resolution.Result, error) {
	if !enabled {
		return s.ResolveOutfits(ctx, ownerID, nil, false)
	}
	outfits, err := s.List(ctx, ownerID)
	if err != nil {
		return resolution.Result{}, err
	}
	return s.ResolveOutfits(ctx, ownerID, outfits, true)
}

// ResolveOutfits runs one resolution pass over caller-supplied outfits.
func (s *OutfitService) ResolveOutfits(ctx context.Context, ownerID string, outfits []*wardrobe.OutfitSuggestion, enabled bool) (resolution.Result, error) {
	if err := requireOwner(ownerID); err != nil {
		return resolution.Result{}, err
	}
	return s.orchestrator.Run(ctx, ownerID, outfits, s.caches.Accessor(ownerID), enabled), nil
}

// ResolveOne loads a single stored outfit and resolves its items. It returns
// repositories.ErrNotFound when the owner has no such outfit.
func (s *OutfitService) ResolveOne(ctx context.Context, ownerID, id string, enabled bool) (*wardrobe.OutfitSuggestion, resolution.Result, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, resolution.Result{}, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, resolution.Result{}, invalid("outfit ID cannot be empty")
	}
	outfit, err := s.outfits.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, resolution.Result{}, fmt.Errorf("failed to get outfit %s: %w", id, err)
	}
	if outfit == nil {
		return nil, resolution.Result{}, fmt.Errorf("outfit %s: %w", id, repositories.ErrNotFound)
	}
	result, err := s.ResolveOutfits(ctx, ownerID, []*wardrobe.OutfitSuggestion{outfit}, enabled)
	return outfit, result, err
}

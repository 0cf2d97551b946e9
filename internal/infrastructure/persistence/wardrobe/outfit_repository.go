package wardrobe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/repositories"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/persistence/database"
)

var _ repositories.OutfitRepository = (*OutfitRepository)(nil)

type OutfitRepository struct {
	db     *sql.DB
	cache  interfaces.Cache
	logger *logging.ChanneledLogger
}

func NewOutfitRepository(db *sql.DB, cache interfaces.Cache, logger *logging.ChanneledLogger) *OutfitRepository {
	return &OutfitRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// FindAll returns an owner's outfits oldest first, employing a cache-first strategy.
func (r *OutfitRepository) FindAll(ctx context.Context, ownerID string) ([]*wardrobe.OutfitSuggestion, error) {
	if outfits, found := r.cache.GetOutfits(ownerID); found {
		return outfits, nil
	}

	query := `SELECT id, owner_id, title, occasion, item_ids, created FROM outfit_suggestions WHERE owner_id = ? ORDER BY created, id`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Database().Error("Failed to query outfits", "error", err.Error(), "ownerId", ownerID)
		return nil, translateError("failed to query outfits", err)
	}
	defer rows.Close()

	outfits := make([]*wardrobe.OutfitSuggestion, 0)
	for rows.Next() {
		outfit, err := scanOutfit(rows)
		if err != nil {
			return nil, translateError("failed to scan outfit", err)
		}
		outfits = append(outfits, outfit)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("failed to iterate outfits", err)
	}

	r.logger.Database().Debug("Loaded outfits from database", "ownerId", ownerID, "count", len(outfits), "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), ownerID)

	r.cache.SetOutfits(ownerID, outfits)
	return outfits, nil
}

func (r *OutfitRepository) FindByID(ctx context.Context, ownerID, id string) (*wardrobe.OutfitSuggestion, error) {
	if outfits, found := r.cache.GetOutfits(ownerID); found {
		for _, outfit := range outfits {
			if outfit.ID == id {
				return outfit, nil
			}
		}
	}

	query := `SELECT id, owner_id, title, occasion, item_ids, created FROM outfit_suggestions WHERE id = ? AND owner_id = ?`
	outfit, err := scanOutfit(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, translateError("failed to load outfit", err)
	}
	return outfit, nil
}

func (r *OutfitRepository) Store(ctx context.Context, outfit *wardrobe.OutfitSuggestion) error {
	query := `INSERT INTO outfit_suggestions (id, owner_id, title, occasion, item_ids, created) VALUES (?, ?, ?, ?, ?, ?)`

	itemIDs, err := json.Marshal(outfit.ItemIDs)
	if err != nil {
		return fmt.Errorf("failed to encode outfit item ids: %w", err)
	}
	if outfit.Created.IsZero() {
		outfit.Created = time.Now().UTC()
	}

	start := time.Now()
	r.logger.Database().Debug("Executing outfit insert", "id", outfit.ID)

	_, err = r.db.ExecContext(ctx, query, outfit.ID, outfit.OwnerID, outfit.Title, outfit.Occasion, string(itemIDs), outfit.Created)
	if err != nil {
		r.logger.Database().Error("Outfit insert failed", "error", err.Error(), "id", outfit.ID)
		return translateError("failed to insert outfit", err)
	}

	r.logger.Database().Info("Outfit insert completed", "id", outfit.ID, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), outfit.OwnerID)
	r.cache.InvalidateOutfits(outfit.OwnerID)
	return nil
}

func (r *OutfitRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM outfit_suggestions WHERE id = ? AND owner_id = ?`

	start := time.Now()
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		r.logger.Database().Error("Outfit delete failed", "error", err.Error(), "id", id)
		return translateError("failed to delete outfit", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}

	r.logger.Database().Info("Outfit delete completed", "id", id, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), ownerID)
	r.cache.InvalidateOutfits(ownerID)
	return nil
}

func scanOutfit(row rowScanner) (*wardrobe.OutfitSuggestion, error) {
	var (
		outfit   wardrobe.OutfitSuggestion
		occasion sql.NullString
		itemIDs  sql.NullString
	)
	if err := row.Scan(&outfit.ID, &outfit.OwnerID, &outfit.Title, &occasion, &itemIDs, &outfit.Created); err != nil {
		return nil, err
	}
	outfit.Occasion = nullStringPtr(occasion)
	outfit.ItemIDs = decodeItemIDs(itemIDs)
	return &outfit, nil
}

// decodeItemIDs keeps whatever JSON value was stored. Text that is not JSON is
// kept as a plain string, which resolves to no references.
func decodeItemIDs(ns sql.NullString) any {
	if !ns.Valid {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return ns.String
	}
	return v
}

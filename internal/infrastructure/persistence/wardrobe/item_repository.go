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

var _ repositories.ItemRepository = (*ItemRepository)(nil)

const (
	minimalColumns  = `id, owner_id, name, thumb_key, clean_key, original_key, created, changed`
	detailedColumns = `id, owner_id, name, thumb_key, clean_key, original_key, created, changed, item_type, colour`
)

type ItemRepository struct {
	db     *sql.DB
	cache  interfaces.Cache
	logger *logging.ChanneledLogger
}

func NewItemRepository(db *sql.DB, cache interfaces.Cache, logger *logging.ChanneledLogger) *ItemRepository {
	return &ItemRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// FindByID returns the detailed item, or nil when the owner has no such item.
func (r *ItemRepository) FindByID(ctx context.Context, ownerID, id string) (*wardrobe.Item, error) {
	if item, found := r.cache.GetItem(ownerID, id); found && item.HasDetail() {
		return item, nil
	}

	items, err := r.loadMultipleFromDB(ctx, ownerID, []string{id}, wardrobe.ProjectionDetailed)
	if err != nil {
		return nil, err
	}
	item, ok := items[id]
	if !ok {
		return nil, nil
	}

	r.cache.SetItem(ownerID, item)
	return item, nil
}

// FetchItems loads detailed records straight from the database. It does not
// write the cache.
func (r *ItemRepository) FetchItems(ctx context.Context, ownerID string, ids []string) (map[string]*wardrobe.Item, error) {
	return r.loadMultipleFromDB(ctx, ownerID, ids, wardrobe.ProjectionDetailed)
}

// FindAll lists an owner's items newest first using the minimal projection.
func (r *ItemRepository) FindAll(ctx context.Context, ownerID string) ([]*wardrobe.Item, error) {
	query := `SELECT ` + minimalColumns + ` FROM wardrobe_items WHERE owner_id = ? ORDER BY created DESC, id`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Database().Error("Failed to query items", "error", err.Error(), "ownerId", ownerID)
		return nil, translateError("failed to query items", err)
	}
	defer rows.Close()

	items := make([]*wardrobe.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows, wardrobe.ProjectionMinimal)
		if err != nil {
			return nil, translateError("failed to scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("failed to iterate items", err)
	}

	r.logger.Database().Debug("Loaded items from database", "ownerId", ownerID, "count", len(items), "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), ownerID)

	r.cache.SetItems(ownerID, items)
	return items, nil
}

func (r *ItemRepository) Store(ctx context.Context, item *wardrobe.Item) error {
	query := `INSERT INTO wardrobe_items (id, owner_id, name, item_type, colour, thumb_key, clean_key, original_key, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if item.Detail == nil {
		item.Detail = &wardrobe.ItemDetail{}
	}
	colour, err := encodeColour(item.Detail.Colour)
	if err != nil {
		return err
	}
	if item.Created.IsZero() {
		item.Created = time.Now().UTC()
	}

	start := time.Now()
	r.logger.Database().Debug("Executing item insert", "id", item.ID)

	_, err = r.db.ExecContext(ctx, query, item.ID, item.OwnerID, item.Name, item.Detail.Type, colour,
		item.ThumbKey, item.CleanKey, item.OriginalKey, item.Created)
	if err != nil {
		r.logger.Database().Error("Item insert failed", "error", err.Error(), "id", item.ID)
		return translateError("failed to insert item", err)
	}

	r.logger.Database().Info("Item insert completed", "id", item.ID, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), item.OwnerID)
	r.cache.SetItem(item.OwnerID, item)
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, item *wardrobe.Item) error {
	query := `UPDATE wardrobe_items SET name = ?, item_type = ?, colour = ?, thumb_key = ?, clean_key = ?, original_key = ?, changed = ? WHERE id = ? AND owner_id = ?`

	if item.Detail == nil {
		item.Detail = &wardrobe.ItemDetail{}
	}
	colour, err := encodeColour(item.Detail.Colour)
	if err != nil {
		return err
	}
	changed := time.Now().UTC()

	start := time.Now()
	r.logger.Database().Debug("Executing item update", "id", item.ID)

	res, err := r.db.ExecContext(ctx, query, item.Name, item.Detail.Type, colour,
		item.ThumbKey, item.CleanKey, item.OriginalKey, changed, item.ID, item.OwnerID)
	if err != nil {
		r.logger.Database().Error("Item update failed", "error", err.Error(), "id", item.ID)
		return translateError("failed to update item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}

	item.Changed = &changed
	r.logger.Database().Info("Item update completed", "id", item.ID, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), item.OwnerID)
	r.cache.SetItem(item.OwnerID, item)
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM wardrobe_items WHERE id = ? AND owner_id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing item delete", "id", id)

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		r.logger.Database().Error("Item delete failed", "error", err.Error(), "id", id)
		return translateError("failed to delete item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}

	r.logger.Database().Info("Item delete completed", "id", id, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), ownerID)
	r.cache.InvalidateItem(ownerID, id)
	r.cache.InvalidateOutfits(ownerID)
	return nil
}

func (r *ItemRepository) loadMultipleFromDB(ctx context.Context, ownerID string, ids []string, projection wardrobe.ItemProjection) (map[string]*wardrobe.Item, error) {
	result := make(map[string]*wardrobe.Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	columns := minimalColumns
	if projection == wardrobe.ProjectionDetailed {
		columns = detailedColumns
	}
	query := fmt.Sprintf(`SELECT %s FROM wardrobe_items WHERE owner_id = ? AND id IN (%s)`, columns, database.Placeholders(len(ids)))
	args := append([]any{ownerID}, database.StringArgs(ids)...)

	start := time.Now()
	r.logger.Database().Debug("Batch loading items", "ownerId", ownerID, "count", len(ids), "projection", projection.String())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to batch load items", "error", err.Error(), "ownerId", ownerID)
		return nil, translateError("failed to query items", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows, projection)
		if err != nil {
			return nil, translateError("failed to scan item", err)
		}
		result[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("failed to iterate items", err)
	}

	database.CheckAndLogSlowQuery(r.logger, "BATCH_"+query, time.Since(start), ownerID)
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, projection wardrobe.ItemProjection) (*wardrobe.Item, error) {
	var (
		item                                  wardrobe.Item
		name, thumbKey, cleanKey, originalKey sql.NullString
		changed                               sql.NullTime
		itemType, colour                      sql.NullString
	)
	dest := []any{&item.ID, &item.OwnerID, &name, &thumbKey, &cleanKey, &originalKey, &item.Created, &changed}
	if projection == wardrobe.ProjectionDetailed {
		dest = append(dest, &itemType, &colour)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	item.Name = nullStringPtr(name)
	item.ThumbKey = nullStringPtr(thumbKey)
	item.CleanKey = nullStringPtr(cleanKey)
	item.OriginalKey = nullStringPtr(originalKey)
	if changed.Valid {
		t := changed.Time
		item.Changed = &t
	}
	if projection == wardrobe.ProjectionDetailed {
		item.Detail = &wardrobe.ItemDetail{
			Type:   nullStringPtr(itemType),
			Colour: decodeColour(colour),
		}
	}
	return &item, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func encodeColour(colour []string) (any, error) {
	if len(colour) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(colour)
	if err != nil {
		return nil, fmt.Errorf("failed to encode colour: %w", err)
	}
	return string(b), nil
}

// decodeColour tolerates legacy rows; anything that is not a JSON string array is dropped.
func decodeColour(ns sql.NullString) []string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var colour []string
	if err := json.Unmarshal([]byte(ns.String), &colour); err != nil {
		return nil
	}
	return colour
}

package resolution

import (
	"context"
	"strings"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/retry"
)

// BatchSource loads the items of one owner whose IDs are in ids. IDs it does not
// return are treated as missing, not as a failure.
type BatchSource interface {
	FetchItems(ctx context.Context, ownerID string, ids []string) (map[string]*wardrobe.Item, error)
}

// BatchSourceFunc adapts a function to BatchSource.
type BatchSourceFunc func(ctx context.Context, ownerID string, ids []string) (map[string]*wardrobe.Item, error)

func (f BatchSourceFunc) FetchItems(ctx context.Context, ownerID string, ids []string) (map[string]*wardrobe.Item, error) {
	return f(ctx, ownerID, ids)
}

// BatchResult holds the items found and the requested IDs that do not exist.
type BatchResult struct {
	Items      map[string]*wardrobe.Item `json:"items"`
	MissingIDs []string                  `json:"missingIds"`
}

// DefaultMaxBatchSize is the soft limit on IDs per request.
const DefaultMaxBatchSize = 100

// BatchFetcher issues a single classified, retried request for a set of IDs.
type BatchFetcher struct {
	source       BatchSource
	policy       retry.Policy
	maxBatchSize int
	logger       *logging.ChanneledLogger
}

// NewBatchFetcher creates a fetcher. The policy's Retryable predicate is
// replaced so only network and server failures are retried.
func NewBatchFetcher(source BatchSource, policy retry.Policy, maxBatchSize int, logger *logging.ChanneledLogger) *BatchFetcher {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	policy.Retryable = func(err error) bool {
		return ClassifyError(err).Code.Retryable()
	}
	return &BatchFetcher{
		source:       source,
		policy:       policy,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// FetchBatch requests every ID in one call. Empty input succeeds without calling
// the source.
func (f *BatchFetcher) FetchBatch(ctx context.Context, ownerID string, ids []string) (BatchResult, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return BatchResult{Items: map[string]*wardrobe.Item{}, MissingIDs: []string{}}, nil
	}
	if strings.TrimSpace(ownerID) == "" {
		return BatchResult{}, &FetchError{Code: ErrorValidation, Message: "owner id is required"}
	}

	log := f.logger.WithOwner(logging.ChannelResolution, ownerID)
	if len(ids) > f.maxBatchSize {
		log.Warn("Batch exceeds maximum size, proceeding anyway",
			"requested", len(ids), "maxBatchSize", f.maxBatchSize)
	}

	policy := f.policy
	policy.OnRetry = func(attempt int, err error, next time.Duration) {
		log.Warn("Batch fetch failed, retrying",
			"attempt", attempt, "error", err.Error(), "nextDelay", next)
	}

	var found map[string]*wardrobe.Item
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		items, err := f.source.FetchItems(ctx, ownerID, ids)
		if err != nil {
			return ClassifyError(err)
		}
		found = items
		return nil
	})
	if err != nil {
		fe := ClassifyError(err)
		log.Error("Batch fetch failed", "code", string(fe.Code), "error", fe.Message, "requested", len(ids))
		return BatchResult{}, fe
	}

	result := BatchResult{
		Items:      make(map[string]*wardrobe.Item, len(found)),
		MissingIDs: []string{},
	}
	for _, id := range ids {
		if item, ok := found[id]; ok && item != nil {
			result.Items[id] = item
		} else {
			result.MissingIDs = append(result.MissingIDs, id)
		}
	}

	log.Debug("Batch fetch completed",
		"requested", len(ids), "found", len(result.Items), "missing", len(result.MissingIDs))
	return result, nil
}

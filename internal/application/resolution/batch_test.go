package resolution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestFetchBatchEmptyShortCircuits(t *testing.T) {
	src := &countingSource{fn: func([]string) (map[string]*wardrobe.Item, error) {
		t.Fatal("source must not be called")
		return nil, nil
	}}
	res, err := NewBatchFetcher(src, fastPolicy(), 0, nil).FetchBatch(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.MissingIDs)
	assert.Zero(t, src.count())
}

func TestFetchBatchPartialResult(t *testing.T) {
	var requested []string
	src := &countingSource{fn: func(ids []string) (map[string]*wardrobe.Item, error) {
		requested = ids
		return map[string]*wardrobe.Item{"a": item("a")}, nil
	}}

	res, err := NewBatchFetcher(src, fastPolicy(), 0, nil).FetchBatch(context.Background(), "owner-1", []string{"a", "b", "c", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, src.count())
	assert.Equal(t, []string{"a", "b", "c"}, requested)
	assert.Equal(t, []string{"a"}, keys(res.Items))
	assert.Equal(t, []string{"b", "c"}, res.MissingIDs)
}

func TestFetchBatchOversizedStillProceeds(t *testing.T) {
	src := &countingSource{fn: func(ids []string) (map[string]*wardrobe.Item, error) {
		return map[string]*wardrobe.Item{}, nil
	}}
	res, err := NewBatchFetcher(src, fastPolicy(), 2, nil).FetchBatch(context.Background(), "owner-1", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, src.count())
	assert.Equal(t, []string{"a", "b", "c"}, res.MissingIDs)
}

func TestFetchBatchAuthNotRetried(t *testing.T) {
	src := &countingSource{fn: func([]string) (map[string]*wardrobe.Item, error) {
		return nil, errors.New("JWT expired")
	}}
	_, err := NewBatchFetcher(src, fastPolicy(), 0, nil).FetchBatch(context.Background(), "owner-1", []string{"a"})

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrorAuth, fe.Code)
	assert.Equal(t, 1, src.count())
}

func TestFetchBatchNetworkRetriedThenSurfaced(t *testing.T) {
	src := &countingSource{fn: func([]string) (map[string]*wardrobe.Item, error) {
		return nil, errors.New("connection refused")
	}}
	_, err := NewBatchFetcher(src, fastPolicy(), 0, nil).FetchBatch(context.Background(), "owner-1", []string{"a"})

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrorNetwork, fe.Code)
	assert.Equal(t, 3, src.count())
}

func TestFetchBatchServerErrorRecovers(t *testing.T) {
	src := &countingSource{}
	src.fn = func([]string) (map[string]*wardrobe.Item, error) {
		if src.calls == 1 {
			return nil, errors.New("database is locked")
		}
		return map[string]*wardrobe.Item{"a": item("a")}, nil
	}
	res, err := NewBatchFetcher(src, fastPolicy(), 0, nil).FetchBatch(context.Background(), "owner-1", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 2, src.count())
	assert.Contains(t, res.Items, "a")
}

func TestFetchBatchBlankOwnerIsValidation(t *testing.T) {
	src := &countingSource{fn: func([]string) (map[string]*wardrobe.Item, error) { return nil, nil }}
	_, err := NewBatchFetcher(src, fastPolicy(), 0, nil).FetchBatch(context.Background(), "  ", []string{"a"})

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrorValidation, fe.Code)
	assert.Zero(t, src.count())
}

func keys(m map[string]*wardrobe.Item) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

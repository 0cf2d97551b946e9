package resolution

import (
	"context"
	"sync"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// DefaultHighMissingRateThreshold is the missing/total ratio above which a
// high_missing_rate event is emitted.
const DefaultHighMissingRateThreshold = 0.20

// Fetcher fetches the residual uncached IDs of a resolution pass.
type Fetcher interface {
	FetchBatch(ctx context.Context, ownerID string, ids []string) (BatchResult, error)
}

// Result is the caller-facing outcome of a resolution pass.
type Result struct {
	ResolvedOutfits map[string][]wardrobe.OutfitItemViewModel `json:"resolvedOutfits"`
	UncachedIDs     []string                                  `json:"uncachedIds"`
	IsLoading       bool                                      `json:"isLoading"`
	IsError         bool                                      `json:"isError"`
	Error           *FetchError                               `json:"-"`
	ErrorCode       ErrorCode                                 `json:"errorCode,omitempty"`
	ErrorMessage    string                                    `json:"errorMessage,omitempty"`
	ResolvedCount   int                                       `json:"resolvedCount"`
	MissingCount    int                                       `json:"missingCount"`
}

func emptyResult() Result {
	return Result{
		ResolvedOutfits: map[string][]wardrobe.OutfitItemViewModel{},
		UncachedIDs:     []string{},
	}
}

func newResult(r wardrobe.ItemResolutionResult) Result {
	resolved, missing := r.Counts()
	return Result{
		ResolvedOutfits: r.ResolvedOutfits,
		UncachedIDs:     r.UncachedIDs,
		ResolvedCount:   resolved,
		MissingCount:    missing,
	}
}

func (r *Result) setError(fe *FetchError) {
	r.IsError = true
	r.Error = fe
	r.ErrorCode = fe.Code
	r.ErrorMessage = fe.Message
}

// Orchestrator runs cache-first resolution passes.
type Orchestrator struct {
	resolver  *Resolver
	fetcher   Fetcher
	sink      *CacheSink
	telemetry TelemetrySink
	threshold float64
	logger    *logging.ChanneledLogger
}

// NewOrchestrator wires the pass components. A negative threshold selects
// DefaultHighMissingRateThreshold; zero alarms on any missing item.
func NewOrchestrator(resolver *Resolver, fetcher Fetcher, sink *CacheSink, telemetry TelemetrySink, threshold float64, logger *logging.ChanneledLogger) *Orchestrator {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	if threshold < 0 {
		threshold = DefaultHighMissingRateThreshold
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Orchestrator{
		resolver:  resolver,
		fetcher:   fetcher,
		sink:      sink,
		telemetry: telemetry,
		threshold: threshold,
		logger:    logger,
	}
}

// passHooks let a Query observe the loading sub-state and veto population.
type passHooks struct {
	loading func(Result)
	active  func() bool
}

// Run performs one independent resolution pass for ownerID.
func (o *Orchestrator) Run(ctx context.Context, ownerID string, outfits []*wardrobe.OutfitSuggestion, cache CacheAccessor, enabled bool) Result {
	result, _ := o.run(ctx, ownerID, outfits, cache, enabled, passHooks{})
	return result
}

// run returns false when the pass was abandoned by its hooks.
func (o *Orchestrator) run(ctx context.Context, ownerID string, outfits []*wardrobe.OutfitSuggestion, cache CacheAccessor, enabled bool, hooks passHooks) (Result, bool) {
	if !enabled || len(outfits) == 0 {
		return emptyResult(), true
	}
	log := o.logger.WithOwner(logging.ChannelResolution, ownerID)

	first := o.resolver.Resolve(outfits, cache)
	if len(first.UncachedIDs) == 0 {
		result := newResult(first)
		o.emitCompleted(ownerID, len(outfits), result)
		return result, true
	}

	if hooks.loading != nil {
		loading := newResult(first)
		loading.IsLoading = true
		hooks.loading(loading)
	}

	if o.fetcher == nil {
		fe := &FetchError{Code: ErrorUnknown, Message: "no batch fetcher configured"}
		result := newResult(first)
		result.setError(fe)
		o.emitFailed(ownerID, fe)
		return result, true
	}

	start := time.Now()
	batch, err := o.fetcher.FetchBatch(ctx, ownerID, first.UncachedIDs)
	if hooks.active != nil && !hooks.active() {
		log.Debug("Resolution pass abandoned, fetch result discarded", "uncached", len(first.UncachedIDs))
		return Result{}, false
	}
	if err != nil {
		fe := ClassifyError(err)
		result := newResult(first)
		result.setError(fe)
		log.Warn("Batch fetch failed, returning cache-only resolution",
			"code", string(fe.Code), "error", fe.Message, "duration", time.Since(start))
		o.emitFailed(ownerID, fe)
		return result, true
	}

	o.sink.Populate(ownerID, batch.Items)

	final := o.resolver.Resolve(outfits, overlay{fresh: batch.Items, cache: cache})
	result := newResult(final)
	log.Debug("Resolution pass fetched residual items",
		"requested", len(first.UncachedIDs), "found", len(batch.Items),
		"missing", len(batch.MissingIDs), "duration", time.Since(start))
	o.emitCompleted(ownerID, len(outfits), result)
	return result, true
}

func (o *Orchestrator) emitCompleted(ownerID string, outfitCount int, r Result) {
	total := r.ResolvedCount + r.MissingCount
	o.emit(Event{
		Type:    EventResolutionCompleted,
		OwnerID: ownerID,
		Payload: CompletedPayload{
			OutfitCount:   outfitCount,
			TotalItems:    total,
			ResolvedCount: r.ResolvedCount,
			MissingCount:  r.MissingCount,
		},
	})
	if total == 0 {
		return
	}
	if rate := float64(r.MissingCount) / float64(total); rate > o.threshold {
		o.emit(Event{
			Type:    EventHighMissingRate,
			OwnerID: ownerID,
			Payload: HighMissingRatePayload{MissingCount: r.MissingCount, TotalItems: total, Rate: rate},
		})
	}
}

func (o *Orchestrator) emitFailed(ownerID string, fe *FetchError) {
	o.emit(Event{
		Type:    EventResolutionFailed,
		OwnerID: ownerID,
		Payload: FailedPayload{ErrorCode: fe.Code, ErrorMessage: fe.Message},
	})
}

func (o *Orchestrator) emit(event Event) {
	if o.telemetry == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	o.telemetry.Emit(event)
}

// overlay answers from freshly fetched items before falling back to the cache,
// so a failed cache write does not hide data the pass already holds.
type overlay struct {
	fresh map[string]*wardrobe.Item
	cache CacheAccessor
}

func (v overlay) Lookup(id string) (*wardrobe.Item, bool) {
	if item, ok := v.fresh[id]; ok && item != nil {
		return item, true
	}
	return lookup(v.cache, id)
}

// Query is a stateful resolution bound to one owner and outfit set. Its state
// is observable while a fetch is outstanding.
type Query struct {
	orchestrator *Orchestrator
	ownerID      string
	cache        CacheAccessor

	mu         sync.RWMutex
	outfits    []*wardrobe.OutfitSuggestion
	enabled    bool
	generation uint64
	state      Result
}

// NewQuery creates a query. Nothing runs until Refetch is called.
func (o *Orchestrator) NewQuery(ownerID string, outfits []*wardrobe.OutfitSuggestion, cache CacheAccessor, enabled bool) *Query {
	return &Query{
		orchestrator: o,
		ownerID:      ownerID,
		cache:        cache,
		outfits:      outfits,
		enabled:      enabled,
		state:        emptyResult(),
	}
}

// Refetch runs a new pass over the current outfits and returns its result. A
// pass overtaken by SetEnabled, SetOutfits or a later Refetch leaves the state
// to its successor and does not populate the cache.
func (q *Query) Refetch(ctx context.Context) Result {
	q.mu.Lock()
	q.generation++
	gen := q.generation
	outfits := q.outfits
	enabled := q.enabled
	q.mu.Unlock()

	current := func() bool {
		q.mu.RLock()
		defer q.mu.RUnlock()
		return q.generation == gen && q.enabled
	}

	hooks := passHooks{
		loading: func(r Result) {
			q.mu.Lock()
			if q.generation == gen {
				q.state = r
			}
			q.mu.Unlock()
		},
		active: current,
	}

	result, ok := q.orchestrator.run(ctx, q.ownerID, outfits, q.cache, enabled, hooks)
	if !ok {
		return q.State()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.generation == gen {
		q.state = result
	}
	return result
}

// SetEnabled toggles the query. Disabling clears the state and stops any
// in-flight pass from being consumed.
func (q *Query) SetEnabled(enabled bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enabled == enabled {
		return
	}
	q.enabled = enabled
	q.generation++
	if !enabled {
		q.state = emptyResult()
	}
}

// SetOutfits replaces the outfit set; call Refetch to resolve it.
func (q *Query) SetOutfits(outfits []*wardrobe.OutfitSuggestion) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.outfits = outfits
	q.generation++
}

// State returns the latest known result.
func (q *Query) State() Result {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state
}

// Enabled reports whether the query currently resolves.
func (q *Query) Enabled() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.enabled
}

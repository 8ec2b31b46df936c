package gacha

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/event"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// Catalog is the read-only pool and item configuration.
type Catalog interface {
	Pool(id string) (*domain.Pool, bool)
	Pools() []*domain.Pool
	BaseRate(r domain.Rarity) float64
	// EligibleItems returns the items of rarity r inside the pool scope.
	EligibleItems(poolID string, r domain.Rarity) []domain.Item
	ItemsByRarity(r domain.Rarity) []domain.Item
}

// Wallet is the external currency store.
type Wallet interface {
	Balances(ctx context.Context) (domain.Cost, error)
	Deduct(ctx context.Context, cost domain.Cost) error
}

// Publisher delivers engine events without blocking the caller.
type Publisher interface {
	PublishWithRetry(ctx context.Context, evt event.Event)
}

// Service defines the pull engine operations
type Service interface {
	PullBatch(ctx context.Context, poolID string, count int) (*domain.BatchResult, error)
	SwitchPool(ctx context.Context, poolID string) error
	ActivePool(ctx context.Context) string
	Pools(ctx context.Context) []PoolView
	Rates(ctx context.Context, poolID string) (RateTable, error)
	Pity(ctx context.Context) map[string]domain.PityState
	History(ctx context.Context, limit int) []domain.PullResult
	Statistics(ctx context.Context) domain.Statistics
	Balances(ctx context.Context) (domain.Cost, error)
	Simulate(ctx context.Context, poolID string, params SimParams) (*SimulationReport, error)
}

// PoolView is a pool as presented to callers.
type PoolView struct {
	Pool      *domain.Pool     `json:"pool"`
	Available bool             `json:"available"`
	Active    bool             `json:"active"`
	Pity      domain.PityState `json:"pity"`
}

// PoolPity is the persisted pity record of one pool.
type PoolPity struct {
	PoolID          string `json:"pool_id"`
	EpicMisses      int    `json:"epic_misses"`
	LegendaryMisses int    `json:"legendary_misses"`
}

// EngineState is everything the engine persists under StateKey.
type EngineState struct {
	SchemaVersion int                 `json:"schema_version"`
	ActivePool    string              `json:"active_pool,omitempty"`
	Pity          []PoolPity          `json:"pity"`
	History       []domain.PullResult `json:"history"`
	Statistics    StatisticsRecord    `json:"statistics"`
	SavedAt       time.Time           `json:"saved_at"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomSource replaces the crypto random source.
func WithRandomSource(rng RandomSource) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the uuid pull id generator.
func WithIDGenerator(next func() string) Option {
	return func(e *Engine) { e.newID = next }
}

// WithHistoryLimit overrides the retained history length.
func WithHistoryLimit(limit int) Option {
	return func(e *Engine) { e.historyLimit = limit }
}

// WithSimulationWorkers sets the default simulation fan-out.
func WithSimulationWorkers(workers int) Option {
	return func(e *Engine) { e.simWorkers = workers }
}

// Engine owns pity state and pull history for one profile.
type Engine struct {
	catalog   Catalog
	wallet    Wallet
	store     gamestate.Store
	publisher Publisher

	rng          RandomSource
	now          func() time.Time
	newID        func() string
	historyLimit int
	simWorkers   int

	rates    *RateEngine
	executor *PullExecutor
	selector *ItemSelector

	busy atomic.Bool

	mu     sync.RWMutex
	pity   map[string]domain.PityState
	active string
	ledger *HistoryLedger
}

var _ Service = (*Engine)(nil)

// NewEngine creates a pull engine. publisher may be nil.
func NewEngine(catalog Catalog, wallet Wallet, store gamestate.Store, publisher Publisher, opts ...Option) *Engine {
	e := &Engine{
		catalog:      catalog,
		wallet:       wallet,
		store:        store,
		publisher:    publisher,
		rng:          NewCryptoSource(),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		historyLimit: domain.HistoryLimit,
		simWorkers:   DefaultSimulationWorkers,
		pity:         make(map[string]domain.PityState),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.rates = NewRateEngine(BaseRates(catalog))
	e.executor = NewPullExecutor(e.rng)
	e.selector = NewItemSelector(catalog, e.rng)

	base := e.rates.Base()
	e.ledger = NewHistoryLedger(e.historyLimit, base.Get(domain.RarityLegendary)+base.Get(domain.RarityMythical))
	return e
}

// BaseRates reads the catalog base rates into a table.
func BaseRates(catalog Catalog) RateTable {
	var t RateTable
	for _, r := range domain.AllRarities() {
		t[r] = catalog.BaseRate(r)
	}
	return t
}

func (e *Engine) resolvePool(poolID string) (*domain.Pool, error) {
	if poolID == "" {
		e.mu.RLock()
		poolID = e.active
		e.mu.RUnlock()
		if poolID == "" {
			return nil, domain.ErrNoActivePool
		}
	}
	pool, ok := e.catalog.Pool(poolID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPoolNotFound, poolID)
	}
	return pool, nil
}

// PullBatch performs count unit pulls on poolID (the active pool when empty).
// Nothing is deducted or drawn unless every precondition holds.
func (e *Engine) PullBatch(ctx context.Context, poolID string, count int) (*domain.BatchResult, error) {
	log := logger.FromContext(ctx)

	if !domain.ValidBatchSize(count) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidPullCount, count)
	}
	pool, err := e.resolvePool(poolID)
	if err != nil {
		return nil, err
	}
	if !pool.Available(e.now()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPoolUnavailable, pool.ID)
	}

	if !e.busy.CompareAndSwap(false, true) {
		log.Warn(LogMsgBatchRejected, "pool", pool.ID, "reason", domain.ErrMsgPullInProgress)
		return nil, domain.ErrPullInProgress
	}
	defer e.busy.Store(false)

	cost := pool.Cost.ForBatch(count, domain.DiscountPercent(count))

	balances, err := e.wallet.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextBalances, err)
	}
	if shortfall := cost.Shortfall(balances); len(shortfall) > 0 {
		log.Info(LogMsgBatchRejected, "pool", pool.ID, "count", count, "shortfall", shortfall)
		return nil, domain.NewInsufficientResourcesError(cost, balances)
	}
	if err := e.wallet.Deduct(ctx, cost); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextDeduct, err)
	}

	log.Debug(LogMsgBatchStarted, "pool", pool.ID, "count", count, "cost", cost)

	batch, state := e.drawBatch(ctx, pool, count, cost)

	e.persist(ctx, state)
	e.publishBatch(ctx, pool, batch)

	log.Info(LogMsgBatchCompleted,
		"pool", pool.ID,
		"count", count,
		"guaranteed_rare_used", batch.GuaranteedRareUsed)
	return batch, nil
}

// drawBatch runs the unit pulls, threading pity from one pull into the next,
// and commits pity and history in one step.
func (e *Engine) drawBatch(ctx context.Context, pool *domain.Pool, count int, cost domain.Cost) (*domain.BatchResult, EngineState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pity := e.pity[pool.ID]
	batch := &domain.BatchResult{
		Results:   make([]domain.PullResult, 0, count),
		PoolID:    pool.ID,
		Count:     count,
		TotalCost: cost,
	}

	rareSeen := false
	for i := 0; i < count; i++ {
		mode := DrawStandard
		if count == domain.BatchTen && i == count-1 && !rareSeen {
			mode = DrawGuaranteedRare
		}

		rates := e.rates.Compute(pool, pity)
		d := e.executor.Draw(pool, rates, pity, mode)
		if d.Trigger == domain.TriggerGuaranteedRare {
			batch.GuaranteedRareUsed = true
			logger.FromContext(ctx).Debug(LogMsgGuaranteedRareUsed, "pool", pool.ID, "rarity", d.Rarity.String())
		}
		if d.Rarity.AtLeast(domain.RarityRare) {
			rareSeen = true
		}

		batch.Results = append(batch.Results, domain.PullResult{
			ID:         e.newID(),
			Rarity:     d.Rarity,
			Item:       e.selector.Pick(ctx, pool, d.Rarity),
			PoolID:     pool.ID,
			Timestamp:  e.now(),
			BatchIndex: i,
			Trigger:    d.Trigger,
		})
		pity = d.Pity
	}

	e.pity[pool.ID] = pity
	e.ledger.Append(batch.Results...)
	e.ledger.RecordSpend(cost)

	return batch, e.snapshotLocked()
}

func (e *Engine) snapshotLocked() EngineState {
	state := EngineState{
		SchemaVersion: StateSchemaVersion,
		ActivePool:    e.active,
		Pity:          make([]PoolPity, 0, len(e.pity)),
		History:       e.ledger.Entries(),
		Statistics:    e.ledger.Record(),
		SavedAt:       e.now(),
	}
	for id, p := range e.pity {
		state.Pity = append(state.Pity, PoolPity{PoolID: id, EpicMisses: p.EpicMisses, LegendaryMisses: p.LegendaryMisses})
	}
	sort.Slice(state.Pity, func(i, j int) bool { return state.Pity[i].PoolID < state.Pity[j].PoolID })
	return state
}

// persist writes the engine state in a single update. Failures are logged and
// never undo a completed operation.
func (e *Engine) persist(ctx context.Context, state EngineState) {
	if e.store == nil {
		return
	}
	patch := map[string]any{StateKey: state}
	if err := e.store.Update(ctx, patch, gamestate.UpdateMeta{Source: domain.UpdateSourceGacha}); err != nil {
		logger.FromContext(ctx).Error(LogMsgPersistFailed, "error", fmt.Errorf("%s: %w", ErrContextPersist, err))
	}
}

func (e *Engine) publish(ctx context.Context, evt event.Event) {
	if e.publisher == nil {
		return
	}
	e.publisher.PublishWithRetry(ctx, evt)
}

func (e *Engine) publishBatch(ctx context.Context, pool *domain.Pool, batch *domain.BatchResult) {
	for _, res := range batch.Results {
		e.publish(ctx, event.NewPullCompletedEvent(res, pool.Cost))
		if res.Rarity.AtLeast(domain.RarityLegendary) {
			e.publish(ctx, event.NewPullRareEvent(res))
		}
	}
	e.publish(ctx, event.NewPullBatchCompletedEvent(*batch))
}

// SwitchPool makes poolID the target of pulls that name no pool.
func (e *Engine) SwitchPool(ctx context.Context, poolID string) error {
	pool, ok := e.catalog.Pool(poolID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPoolNotFound, poolID)
	}
	if !pool.Available(e.now()) {
		return fmt.Errorf("%w: %s", domain.ErrPoolUnavailable, pool.ID)
	}

	e.mu.Lock()
	previous := e.active
	if previous == pool.ID {
		e.mu.Unlock()
		return nil
	}
	e.active = pool.ID
	state := e.snapshotLocked()
	e.mu.Unlock()

	e.persist(ctx, state)
	e.publish(ctx, event.NewPoolSwitchedEvent(pool.ID, previous))
	logger.FromContext(ctx).Info(LogMsgPoolSwitched, "pool", pool.ID, "previous", previous)
	return nil
}

// ActivePool returns the active pool id, empty when none is set.
func (e *Engine) ActivePool(_ context.Context) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Pools lists every catalog pool with its availability and pity.
func (e *Engine) Pools(_ context.Context) []PoolView {
	now := e.now()
	e.mu.RLock()
	defer e.mu.RUnlock()

	pools := e.catalog.Pools()
	out := make([]PoolView, 0, len(pools))
	for _, p := range pools {
		out = append(out, PoolView{
			Pool:      p,
			Available: p.Available(now),
			Active:    p.ID == e.active,
			Pity:      e.pity[p.ID],
		})
	}
	return out
}

// Rates returns the table the next pull on poolID would draw from.
func (e *Engine) Rates(ctx context.Context, poolID string) (RateTable, error) {
	pool, err := e.resolvePool(poolID)
	if err != nil {
		return RateTable{}, err
	}
	e.mu.RLock()
	pity := e.pity[pool.ID]
	e.mu.RUnlock()

	rates := e.rates.Compute(pool, pity)
	logger.FromContext(ctx).Debug(LogMsgRatesComputed, "pool", pool.ID, "epic_misses", pity.EpicMisses, "legendary_misses", pity.LegendaryMisses)
	return rates, nil
}

// Pity returns a copy of every pool's pity counters.
func (e *Engine) Pity(_ context.Context) map[string]domain.PityState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]domain.PityState, len(e.pity))
	for id, p := range e.pity {
		out[id] = p
	}
	return out
}

// History returns up to limit of the most recent pulls, oldest first.
// A non-positive limit returns the whole retained history.
func (e *Engine) History(_ context.Context, limit int) []domain.PullResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Recent(limit)
}

// Statistics returns the lifetime pull statistics.
func (e *Engine) Statistics(_ context.Context) domain.Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Statistics()
}

// Balances returns the wallet balances.
func (e *Engine) Balances(ctx context.Context) (domain.Cost, error) {
	balances, err := e.wallet.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextBalances, err)
	}
	return balances, nil
}

// Simulate runs a Monte Carlo summary for poolID without touching engine state.
func (e *Engine) Simulate(ctx context.Context, poolID string, params SimParams) (*SimulationReport, error) {
	if params.Workers <= 0 {
		params.Workers = e.simWorkers
	}
	return Simulate(ctx, e.catalog, poolID, params)
}

// Restore loads persisted state. Pools no longer in the catalog are dropped.
func (e *Engine) Restore(ctx context.Context) error {
	log := logger.FromContext(ctx)

	raw, ok, err := e.store.Get(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextRestore, err)
	}
	if !ok || raw == nil {
		log.Info(LogMsgStateNotFound)
		return nil
	}
	state, err := gamestate.Decode[EngineState](raw)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextRestore, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pity = make(map[string]domain.PityState, len(state.Pity))
	for _, p := range state.Pity {
		if _, ok := e.catalog.Pool(p.PoolID); !ok {
			log.Warn(LogMsgUnknownPoolDropped, "pool", p.PoolID)
			continue
		}
		e.pity[p.PoolID] = domain.PityState{EpicMisses: p.EpicMisses, LegendaryMisses: p.LegendaryMisses}
	}

	e.active = ""
	if state.ActivePool != "" {
		if _, ok := e.catalog.Pool(state.ActivePool); ok {
			e.active = state.ActivePool
		} else {
			log.Warn(LogMsgUnknownPoolDropped, "pool", state.ActivePool)
		}
	}

	e.ledger.Restore(state.History, state.Statistics)
	log.Info(LogMsgStateRestored,
		"pools", len(e.pity),
		"history", e.ledger.Len(),
		"total_pulls", state.Statistics.TotalPulls)
	return nil
}

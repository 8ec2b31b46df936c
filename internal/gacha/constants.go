package gacha

// ============================================================================
// Rate adjustment
// ============================================================================

const (
	// NormalizationTolerance bounds how far a normalized table may sum from 1.
	NormalizationTolerance = 1e-9

	// SoftPityEpicStep is the per-miss boost to Epic and above past soft pity.
	SoftPityEpicStep = 0.1

	// SoftPityLegendaryStep is the per-miss boost to Legendary and above past
	// LegendarySoftPityFactor * soft pity.
	SoftPityLegendaryStep = 0.05

	// LegendarySoftPityFactor scales soft pity into the legendary ramp threshold.
	LegendarySoftPityFactor = 1.5

	// HardEpicLegendaryChance is the chance a hard epic pity pull upgrades to Legendary.
	HardEpicLegendaryChance = 0.3

	// CategoryWeightScale converts a category bonus into an integer selection weight.
	CategoryWeightScale = 100
)

// ============================================================================
// Persistence
// ============================================================================

const (
	// StateKey is the top-level game-state path owned by the engine.
	StateKey = "gacha"

	// StateSchemaVersion is bumped when EngineState changes shape.
	StateSchemaVersion = 1
)

// ============================================================================
// Simulation
// ============================================================================

const (
	DefaultSimulationTrials  = 10000
	MaxSimulationTrials      = 1000000
	DefaultSimulationWorkers = 4
	SimulationChunkSize      = 500
)

// ============================================================================
// Log messages
// ============================================================================

const (
	LogMsgBatchStarted       = "Pull batch started"
	LogMsgBatchCompleted     = "Pull batch completed"
	LogMsgBatchRejected      = "Pull batch rejected"
	LogMsgGuaranteedRareUsed = "Ten-pull guarantee applied to final pull"
	LogMsgRatesComputed      = "Rates computed"
	LogMsgCatalogGap         = "Data integrity warning: catalog has no item for rarity"
	LogMsgPersistFailed      = "Failed to persist gacha state"
	LogMsgPublishFailed      = "Failed to publish gacha event"
	LogMsgPoolSwitched       = "Active pool switched"
	LogMsgStateRestored      = "Gacha state restored"
	LogMsgStateNotFound      = "No persisted gacha state, starting fresh"
	LogMsgUnknownPoolDropped = "Persisted state references unknown pool, dropping"
	LogMsgSimulationDone     = "Simulation completed"
)

// Error context prefixes
const (
	ErrContextBalances = "failed to read balances"
	ErrContextDeduct   = "failed to deduct pull cost"
	ErrContextRestore  = "failed to restore gacha state"
	ErrContextPersist  = "failed to persist gacha state"

	ErrMsgSimulationChunks = "simulation chunks failed"
)

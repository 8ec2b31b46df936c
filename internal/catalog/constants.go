package catalog

// SchemaName is the registered name of the embedded catalog schema.
const SchemaName = "catalog.schema.json"

// RateSumTolerance bounds how far base rates may sum from 1.
const RateSumTolerance = 1e-9

// DefaultBaseRates apply when a catalog omits base_rates.
var DefaultBaseRates = map[string]float64{
	"common":    0.60,
	"uncommon":  0.25,
	"rare":      0.10,
	"epic":      0.04,
	"legendary": 0.009,
	"mythical":  0.001,
}

// Log messages
const (
	LogMsgCatalogLoaded = "Catalog loaded"
	LogMsgCatalogGaps   = "Catalog has rarities without items"
)

// Problem messages
const (
	ProblemBaseRateSum     = "base_rates sum to %v, want 1"
	ProblemUnknownRarity   = "%s: unknown rarity %q"
	ProblemNegativeValue   = "%s: %q must not be negative"
	ProblemDuplicateItem   = "items: duplicate id %q"
	ProblemDuplicatePool   = "pools: duplicate id %q"
	ProblemMissingField    = "%s: %s is required"
	ProblemUnknownCurrency = "%s: unknown currency %q"
	ProblemPityOrder       = "pool %s: soft pity %d must be between 1 and hard pity %d"
	ProblemLegendaryPity   = "pool %s: legendary pity must be positive"
	ProblemUnknownScope    = "pool %s: unknown scope mode %q"
	ProblemScopeCategories = "pool %s: category scope needs categories"
	ProblemScopeEvent      = "pool %s: event scope needs an event tag"
	ProblemUnknownCategory = "pool %s: scope category %q has no items"
	ProblemUnknownEvent    = "pool %s: scope event %q has no items"
	ProblemMissingExpiry   = "pool %s: time-limited pool needs expires_at"
	ProblemNoPools         = "catalog defines no pools"
)

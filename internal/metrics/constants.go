package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Gacha metric names
const (
	MetricNamePullsTotal          = "gacha_pulls_total"
	MetricNameRarePullsTotal      = "gacha_rare_pulls_total"
	MetricNameBatchesTotal        = "gacha_batches_total"
	MetricNameCurrencySpentTotal  = "gacha_currency_spent_total"
	MetricNameGuaranteedRareTotal = "gacha_guaranteed_rare_total"
	MetricNameCatalogGapsTotal    = "gacha_catalog_gaps_total"
	MetricNamePoolSwitchesTotal   = "gacha_pool_switches_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Gacha metric help text
const (
	HelpTextPullsTotal          = "Total number of unit pulls by pool and rarity"
	HelpTextRarePullsTotal      = "Total number of Legendary or Mythical pulls"
	HelpTextBatchesTotal        = "Total number of completed pull batches by size"
	HelpTextCurrencySpentTotal  = "Total currency spent on pulls"
	HelpTextGuaranteedRareTotal = "Total number of ten-pull guarantees applied"
	HelpTextCatalogGapsTotal    = "Total number of placeholder items issued for catalog gaps"
	HelpTextPoolSwitchesTotal   = "Total number of active pool switches"
)

// ============================================================================
// Labels
// ============================================================================

const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelPool     = "pool"
	LabelRarity   = "rarity"
	LabelCount    = "count"
	LabelCurrency = "currency"
)

// ============================================================================
// Buckets
// ============================================================================

// HTTPLatencyBuckets are the request latency histogram buckets in seconds
var HTTPLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgMetricsRecorded     = "Metrics recorded for event"
	LogMsgPayloadDecodeFailed = "Failed to decode event payload for metrics"
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Gacha Metrics
var (
	PullsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePullsTotal,
			Help: HelpTextPullsTotal,
		},
		[]string{LabelPool, LabelRarity},
	)

	RarePullsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRarePullsTotal,
			Help: HelpTextRarePullsTotal,
		},
		[]string{LabelPool},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBatchesTotal,
			Help: HelpTextBatchesTotal,
		},
		[]string{LabelPool, LabelCount},
	)

	CurrencySpentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCurrencySpentTotal,
			Help: HelpTextCurrencySpentTotal,
		},
		[]string{LabelCurrency},
	)

	GuaranteedRareTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGuaranteedRareTotal,
			Help: HelpTextGuaranteedRareTotal,
		},
		[]string{LabelPool},
	)

	CatalogGapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCatalogGapsTotal,
			Help: HelpTextCatalogGapsTotal,
		},
		[]string{LabelRarity},
	)

	PoolSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePoolSwitchesTotal,
			Help: HelpTextPoolSwitchesTotal,
		},
		[]string{LabelPool},
	)
)

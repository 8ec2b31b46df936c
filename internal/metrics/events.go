package metrics

import (
	"context"
	"strconv"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/event"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// recorders maps each gacha event to the counters it feeds.
var recorders = map[event.Type]func(payload interface{}) error{
	event.PullCompleted:      recordPull,
	event.PullRare:           recordRare,
	event.PullBatchCompleted: recordBatch,
	event.PoolSwitched:       recordSwitch,
}

// EventMetricsCollector turns bus traffic into Prometheus counters.
type EventMetricsCollector struct{}

func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes the collector to every event type it records.
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	for typ := range recorders {
		bus.Subscribe(typ, e.HandleEvent)
	}
	return nil
}

// HandleEvent counts evt. A payload that fails to decode is counted as a
// handler error and logged, but never returned, so it is not retried.
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	record, ok := recorders[evt.Type]
	if !ok {
		return nil
	}
	if err := record(evt.Payload); err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		logger.FromContext(ctx).Warn(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
		return nil
	}
	logger.FromContext(ctx).Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func recordPull(raw interface{}) error {
	p, err := event.DecodePayload[domain.PullCompletedPayload](raw)
	if err != nil {
		return err
	}
	PullsTotal.WithLabelValues(p.Pool, p.Result.Rarity.String()).Inc()
	if p.Result.Item.IsPlaceholder() {
		CatalogGapsTotal.WithLabelValues(p.Result.Rarity.String()).Inc()
	}
	return nil
}

func recordRare(raw interface{}) error {
	p, err := event.DecodePayload[domain.PullRarePayload](raw)
	if err != nil {
		return err
	}
	RarePullsTotal.WithLabelValues(p.Result.PoolID).Inc()
	return nil
}

// Spend is taken from the batch total so discounts are counted once.
func recordBatch(raw interface{}) error {
	p, err := event.DecodePayload[domain.PullBatchCompletedPayload](raw)
	if err != nil {
		return err
	}
	BatchesTotal.WithLabelValues(p.Pool, strconv.Itoa(p.Count)).Inc()
	for currency, amount := range p.TotalCost {
		if amount > 0 {
			CurrencySpentTotal.WithLabelValues(string(currency)).Add(float64(amount))
		}
	}
	if p.GuaranteedRareUsed {
		GuaranteedRareTotal.WithLabelValues(p.Pool).Inc()
	}
	return nil
}

func recordSwitch(raw interface{}) error {
	p, err := event.DecodePayload[domain.PoolSwitchedPayload](raw)
	if err != nil {
		return err
	}
	PoolSwitchesTotal.WithLabelValues(p.Pool).Inc()
	return nil
}

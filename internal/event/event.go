package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
)

// Type names an event; subscribers register per type.
type Type string

// Pull engine event types
const (
	PullCompleted      Type = domain.EventTypePullCompleted
	PullRare           Type = domain.EventTypePullRare
	PullBatchCompleted Type = domain.EventTypePullBatchCompleted
	PoolSwitched       Type = domain.EventTypePoolSwitched
)

// Event is the envelope carried by the bus and written to dead-letter files.
type Event struct {
	Version    string            `json:"version"`
	Type       Type              `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    interface{}       `json:"payload"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Source returns the component that emitted the event, if recorded.
func (e Event) Source() string {
	return e.Metadata[MetadataKeySource]
}

func newEvent(typ Type, payload interface{}) Event {
	return Event{
		Version:    EventSchemaVersion,
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
		Metadata:   map[string]string{MetadataKeySource: domain.UpdateSourceGacha},
	}
}

// NewPullCompletedEvent creates the per-pull completion event
func NewPullCompletedEvent(result domain.PullResult, cost domain.Cost) Event {
	return newEvent(PullCompleted, domain.PullCompletedPayload{
		Result: result,
		Pool:   result.PoolID,
		Cost:   cost.Clone(),
	})
}

// NewPullRareEvent creates the event announcing a Legendary or Mythical result
func NewPullRareEvent(result domain.PullResult) Event {
	return newEvent(PullRare, domain.PullRarePayload{Result: result})
}

// NewPullBatchCompletedEvent creates the event published after every unit pull of a batch
func NewPullBatchCompletedEvent(batch domain.BatchResult) Event {
	return newEvent(PullBatchCompleted, domain.PullBatchCompletedPayload{
		Results:            append([]domain.PullResult(nil), batch.Results...),
		Count:              batch.Count,
		Pool:               batch.PoolID,
		TotalCost:          batch.TotalCost.Clone(),
		GuaranteedRareUsed: batch.GuaranteedRareUsed,
	})
}

// NewPoolSwitchedEvent creates the active pool change event
func NewPoolSwitchedEvent(poolID, previous string) Event {
	return newEvent(PoolSwitched, domain.PoolSwitchedPayload{Pool: poolID, Previous: previous})
}

// Handler reacts to one event. Returned errors are reported to the publisher.
type Handler func(ctx context.Context, event Event) error

// Bus delivers events to the handlers subscribed to their type.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus delivers synchronously, in subscription order, on the caller's goroutine.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[Type][]Handler)}
}

// Publish runs every handler for evt.Type even when earlier ones fail or
// panic, and returns their errors joined.
func (b *MemoryBus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	handlers := b.handlers[evt.Type]
	b.mu.RUnlock()

	var errs []error
	for i, h := range handlers {
		if err := invoke(ctx, h, evt); err != nil {
			errs = append(errs, fmt.Errorf("handler %d: %w", i, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s %s: %w", ErrMsgHandlersFailed, evt.Type, errors.Join(errs...))
}

func invoke(ctx context.Context, h Handler, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", ErrMsgHandlerPanicked, r)
		}
	}()
	return h(ctx, evt)
}

// Subscribe adds handler for eventType. The slice is copied on write so
// in-flight publishes keep their snapshot.
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(slices.Clip(b.handlers[eventType]), handler)
}

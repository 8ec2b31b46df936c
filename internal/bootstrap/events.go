package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/osse101/BrandishGacha_Go/internal/config"
	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/event"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
	"github.com/osse101/BrandishGacha_Go/internal/metrics"
)

// EventSystem is the in-process bus plus the retrying publisher the engine
// emits through. Subscribers attach to Bus; producers use Publisher.
type EventSystem struct {
	Bus       event.Bus
	Publisher *event.ResilientPublisher
}

type eventSettings struct {
	maxRetries     int
	retryDelay     time.Duration
	deadLetterPath string
}

func eventSettingsFrom(cfg *config.Config) eventSettings {
	s := eventSettings{
		maxRetries:     cfg.EventMaxRetries,
		retryDelay:     cfg.EventRetryDelay,
		deadLetterPath: cfg.EventDeadLetterPath,
	}
	if s.maxRetries == 0 {
		s.maxRetries = EventDefaultMaxRetries
	}
	if s.retryDelay == 0 {
		s.retryDelay = EventDefaultRetryDelay
	}
	if s.deadLetterPath == "" {
		s.deadLetterPath = EventDefaultDeadLetterPath
	}
	return s
}

// StartEventSystem builds the bus, attaches the metrics collector and the
// rare pull announcer, and starts the publisher's retry worker.
func StartEventSystem(cfg *config.Config) (*EventSystem, error) {
	settings := eventSettingsFrom(cfg)
	if err := os.MkdirAll(filepath.Dir(settings.deadLetterPath), DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateDeadLetterDir, err)
	}

	bus := event.NewMemoryBus()
	if err := metrics.NewEventMetricsCollector().Register(bus); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	bus.Subscribe(event.PullRare, announceRarePull)

	publisher, err := event.NewResilientPublisher(bus, settings.maxRetries, settings.retryDelay, settings.deadLetterPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateResilientPublisher, err)
	}

	slog.Info(LogMsgEventSystemInitialized,
		"max_retries", settings.maxRetries,
		"retry_delay", settings.retryDelay,
		"deadletter_path", settings.deadLetterPath)
	return &EventSystem{Bus: bus, Publisher: publisher}, nil
}

// Shutdown flushes pending retries. Safe on a nil system.
func (s *EventSystem) Shutdown(ctx context.Context) error {
	if s == nil || s.Publisher == nil {
		return nil
	}
	return s.Publisher.Shutdown(ctx)
}

func announceRarePull(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[domain.PullRarePayload](evt.Payload)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgRarePull,
		"pool", payload.Result.PoolID,
		"rarity", payload.Result.Rarity.String(),
		"item", payload.Result.Item.Name)
	return nil
}

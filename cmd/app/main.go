package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/BrandishGacha_Go/internal/bootstrap"
	"github.com/osse101/BrandishGacha_Go/internal/config"
	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gacha"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
	"github.com/osse101/BrandishGacha_Go/internal/handler"
	"github.com/osse101/BrandishGacha_Go/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}

	if err := run(cfg); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	cat, err := bootstrap.LoadCatalog(ctx, cfg.CatalogPath)
	if err != nil {
		return err
	}

	gs, err := bootstrap.OpenGameState(ctx, cfg)
	if err != nil {
		return err
	}

	starting := domain.Cost{
		domain.CurrencyPrimary:   cfg.StartingPrimary,
		domain.CurrencySecondary: cfg.StartingSecondary,
	}
	if err := bootstrap.SeedWallet(ctx, gs.Store, starting); err != nil {
		_ = gs.Close()
		return err
	}

	events, err := bootstrap.StartEventSystem(cfg)
	if err != nil {
		_ = gs.Close()
		return err
	}

	opts := []gacha.Option{gacha.WithSimulationWorkers(cfg.SimulationWorkers)}
	if cfg.RNGSeed != 0 {
		opts = append(opts, gacha.WithRandomSource(gacha.NewSeededSource(cfg.RNGSeed)))
		slog.Warn("Deterministic RNG enabled; do not use in production", "seed", cfg.RNGSeed)
	}
	engine := gacha.NewEngine(cat, gamestate.NewWallet(gs.Store), gs.Store, events.Publisher, opts...)
	if err := engine.Restore(ctx); err != nil {
		bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{Events: events, GameState: gs})
		return fmt.Errorf("%s: %w", bootstrap.ErrMsgFailedRestore, err)
	}
	slog.Info(bootstrap.LogMsgEngineRestored, "active_pool", engine.ActivePool(ctx))

	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		CatalogVersion: cat.Version(),
		Ready:          gs.Ready,
		Replay:         handler.NewReplayCache(cfg.IdempotencyCacheSize, cfg.IdempotencyTTL),
	}, engine)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case err, ok := <-serverErr:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:    srv,
		Events:    events,
		GameState: gs,
	})
	return runErr
}

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osse101/BrandishGacha_Go/internal/config"
	"github.com/osse101/BrandishGacha_Go/internal/database"
	"github.com/osse101/BrandishGacha_Go/internal/database/postgres"
	"github.com/osse101/BrandishGacha_Go/internal/database/sqlite"
	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
	"github.com/osse101/BrandishGacha_Go/internal/handler"
)

// GameState bundles the opened store with its readiness probe and cleanup.
type GameState struct {
	Store gamestate.Store
	// Ready is nil for the in-process store.
	Ready handler.HealthChecker
	close func() error
}

// Close releases the store's resources.
func (g *GameState) Close() error {
	if g == nil || g.close == nil {
		return nil
	}
	return g.close()
}

// OpenGameState opens the store selected by STORE_DRIVER.
func OpenGameState(ctx context.Context, cfg *config.Config) (*GameState, error) {
	var gs *GameState

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		gs = &GameState{Store: gamestate.NewMemoryStore()}

	case config.StoreDriverPostgres:
		pool, err := database.NewPool(ctx, cfg.GetDBConnString(), database.PoolSettings{
			MaxConns:    cfg.DBMaxConns,
			MaxIdleTime: cfg.DBMaxConnIdleTime,
			MaxLifetime: cfg.DBMaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenStore, err)
		}
		store, err := postgres.OpenGameStateStore(ctx, pool, cfg.ProfileID)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenStore, err)
		}
		gs = &GameState{
			Store: store,
			Ready: pool,
			close: func() error { pool.Close(); return nil },
		}

	case config.StoreDriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, DirPermission); err != nil {
				return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenStore, err)
			}
		}
		store, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenStore, err)
		}
		gs = &GameState{Store: store, Ready: store, close: store.Close}

	default:
		return nil, fmt.Errorf("%s: %q", ErrMsgUnknownDriver, cfg.StoreDriver)
	}

	slog.Info(LogMsgStoreOpened, "driver", cfg.StoreDriver, "profile", cfg.ProfileID)
	return gs, nil
}

// SeedWallet writes the starting balances the first time a profile is opened.
// A profile that already has any balance recorded is left untouched.
func SeedWallet(ctx context.Context, store gamestate.Store, starting domain.Cost) error {
	for _, c := range domain.Currencies() {
		_, ok, err := store.Get(ctx, gamestate.CurrencyPath(c))
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedSeedWallet, err)
		}
		if ok {
			slog.Info(LogMsgWalletAlreadySet)
			return nil
		}
	}

	patch := make(map[string]any, len(starting))
	for _, c := range domain.Currencies() {
		patch[gamestate.CurrencyPath(c)] = starting[c]
	}
	if err := store.Update(ctx, patch, gamestate.UpdateMeta{Source: SeedSource}); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSeedWallet, err)
	}

	slog.Info(LogMsgWalletSeeded, "balances", starting)
	return nil
}

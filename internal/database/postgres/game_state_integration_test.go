package postgres

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/BrandishGacha_Go/internal/database"
	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
	"github.com/osse101/BrandishGacha_Go/internal/testing/pgtest"
)

var pg *pgtest.Container

func TestMain(m *testing.M) {
	flag.Parse()
	pg = pgtest.Start(context.Background())
	code := m.Run()
	pg.Stop()
	os.Exit(code)
}

// setupStore opens a migrated store for profileID on the shared container.
func setupStore(t *testing.T, profileID string) *GameStateStore {
	t.Helper()
	ctx := context.Background()

	pool, err := database.NewPool(ctx, pg.Require(t), database.PoolSettings{MaxConns: 5, MaxIdleTime: time.Minute, MaxLifetime: time.Hour})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store, err := OpenGameStateStore(ctx, pool, profileID)
	require.NoError(t, err)
	return store
}

func TestGameStateStore_Integration(t *testing.T) {
	store := setupStore(t, "integration")
	ctx := context.Background()

	t.Run("missing path", func(t *testing.T) {
		v, ok, err := store.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "settings.name", "brandish"))
		v, ok, err := store.Get(ctx, "settings.name")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "brandish", v)

		require.NoError(t, store.Set(ctx, "settings.name", "gacha"))
		v, _, err = store.Get(ctx, "settings.name")
		require.NoError(t, err)
		assert.Equal(t, "gacha", v)
	})

	t.Run("increment", func(t *testing.T) {
		n, err := store.Increment(ctx, "currency.primary", 500)
		require.NoError(t, err)
		assert.Equal(t, int64(500), n)

		n, err = store.Increment(ctx, "currency.primary", -200)
		require.NoError(t, err)
		assert.Equal(t, int64(300), n)

		v, _, err := store.Get(ctx, "currency.primary")
		require.NoError(t, err)
		assert.Equal(t, json.Number("300"), v)
	})

	t.Run("concurrent increments", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Increment(ctx, "counter", 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		v, _, err := store.Get(ctx, "counter")
		require.NoError(t, err)
		n, err := gamestate.ToInt64(v)
		require.NoError(t, err)
		assert.Equal(t, int64(20), n)
	})

	t.Run("update is atomic", func(t *testing.T) {
		err := store.Update(ctx, map[string]any{
			"currency.primary":   int64(50),
			"currency.secondary": int64(7),
		}, gamestate.UpdateMeta{Source: gamestate.SourceWallet})
		require.NoError(t, err)

		wallet := gamestate.NewWallet(store)
		balances, err := wallet.Balances(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Cost{domain.CurrencyPrimary: 50, domain.CurrencySecondary: 7}, balances)

		err = store.Update(ctx, map[string]any{}, gamestate.UpdateMeta{Source: "test"})
		assert.Error(t, err)
	})

	t.Run("structured values decode", func(t *testing.T) {
		type state struct {
			Active string         `json:"active"`
			Pity   map[string]int `json:"pity"`
		}
		in := state{Active: "standard", Pity: map[string]int{"standard": 12}}
		require.NoError(t, store.Update(ctx, map[string]any{"gacha": in}, gamestate.UpdateMeta{Source: "gacha"}))

		v, ok, err := store.Get(ctx, "gacha")
		require.NoError(t, err)
		require.True(t, ok)
		out, err := gamestate.Decode[state](v)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("profiles are isolated", func(t *testing.T) {
		other := NewGameStateStore(store.db, "other")
		_, ok, err := other.Get(ctx, "currency.primary")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

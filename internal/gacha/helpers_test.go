package gacha

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

var defaultBaseRates = map[domain.Rarity]float64{
	domain.RarityCommon:    0.60,
	domain.RarityUncommon:  0.25,
	domain.RarityRare:      0.10,
	domain.RarityEpic:      0.04,
	domain.RarityLegendary: 0.009,
	domain.RarityMythical:  0.001,
}

type testCatalog struct {
	pools map[string]*domain.Pool
	order []string
	items []domain.Item
	base  map[domain.Rarity]float64
}

func newTestCatalog(pools ...*domain.Pool) *testCatalog {
	c := &testCatalog{
		pools: make(map[string]*domain.Pool),
		base:  defaultBaseRates,
		items: []domain.Item{
			{ID: "wooden_sword", Name: "Wooden Sword", Rarity: domain.RarityCommon, Category: "weapon"},
			{ID: "cloth_cap", Name: "Cloth Cap", Rarity: domain.RarityCommon, Category: "armor"},
			{ID: "iron_sword", Name: "Iron Sword", Rarity: domain.RarityUncommon, Category: "weapon"},
			{ID: "steel_shield", Name: "Steel Shield", Rarity: domain.RarityRare, Category: "armor"},
			{ID: "flame_blade", Name: "Flame Blade", Rarity: domain.RarityEpic, Category: "weapon"},
			{ID: "dragon_helm", Name: "Dragon Helm", Rarity: domain.RarityLegendary, Category: "armor"},
			{ID: "star_lance", Name: "Star Lance", Rarity: domain.RarityMythical, Category: "weapon", EventTag: "starfall"},
		},
	}
	for _, p := range pools {
		c.pools[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

func (c *testCatalog) Pool(id string) (*domain.Pool, bool) {
	p, ok := c.pools[id]
	return p, ok
}

func (c *testCatalog) Pools() []*domain.Pool {
	out := make([]*domain.Pool, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.pools[id])
	}
	return out
}

func (c *testCatalog) BaseRate(r domain.Rarity) float64 {
	return c.base[r]
}

func (c *testCatalog) EligibleItems(poolID string, r domain.Rarity) []domain.Item {
	pool, ok := c.pools[poolID]
	if !ok {
		return nil
	}
	var out []domain.Item
	for _, item := range c.items {
		if item.Rarity == r && pool.Scope.Includes(item) {
			out = append(out, item)
		}
	}
	return out
}

func (c *testCatalog) ItemsByRarity(r domain.Rarity) []domain.Item {
	var out []domain.Item
	for _, item := range c.items {
		if item.Rarity == r {
			out = append(out, item)
		}
	}
	return out
}

func standardPool(id string) *domain.Pool {
	return &domain.Pool{
		ID:    id,
		Name:  "Standard Banner",
		Cost:  domain.Cost{domain.CurrencyPrimary: 100},
		Pity:  domain.PitySystem{SoftPity: 50, HardPity: 75, LegendaryPity: 90},
		Scope: domain.ItemScope{Mode: domain.ScopeAll},
	}
}

func rarityPtr(r domain.Rarity) *domain.Rarity {
	return &r
}

type engineFixture struct {
	engine *Engine
	store  *gamestate.MemoryStore
	wallet *gamestate.Wallet
	pub    *MockPublisher
	cat    *testCatalog
}

func newEngineFixture(t *testing.T, rng RandomSource, primary int64, pools ...*domain.Pool) *engineFixture {
	t.Helper()
	if len(pools) == 0 {
		pools = []*domain.Pool{standardPool("standard")}
	}

	store := gamestate.NewMemoryStore()
	wallet := gamestate.NewWallet(store)
	require.NoError(t, wallet.Grant(context.Background(), domain.Cost{domain.CurrencyPrimary: primary}))

	pub := &MockPublisher{}
	cat := newTestCatalog(pools...)

	n := 0
	engine := NewEngine(cat, wallet, store, pub,
		WithRandomSource(rng),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return "pull-" + strconv.Itoa(n)
		}),
	)
	return &engineFixture{engine: engine, store: store, wallet: wallet, pub: pub, cat: cat}
}

func (f *engineFixture) primary(t *testing.T) int64 {
	t.Helper()
	b, err := f.wallet.Balances(context.Background())
	require.NoError(t, err)
	return b[domain.CurrencyPrimary]
}

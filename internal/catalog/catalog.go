package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
)

// Document is the on-disk catalog layout.
type Document struct {
	Version   string             `yaml:"version"`
	BaseRates map[string]float64 `yaml:"base_rates"`
	Items     []ItemSpec         `yaml:"items"`
	Pools     []PoolSpec         `yaml:"pools"`
}

// ItemSpec is one catalog item entry.
type ItemSpec struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Rarity   string `yaml:"rarity"`
	Category string `yaml:"category"`
	Event    string `yaml:"event"`
}

// PitySpec holds a pool's pity thresholds.
type PitySpec struct {
	Soft      int `yaml:"soft"`
	Hard      int `yaml:"hard"`
	Legendary int `yaml:"legendary"`
}

// ScopeSpec restricts the items a pool may award.
type ScopeSpec struct {
	Mode       string   `yaml:"mode"`
	Categories []string `yaml:"categories"`
	Event      string   `yaml:"event"`
}

// PoolSpec is one catalog pool entry.
type PoolSpec struct {
	ID               string             `yaml:"id"`
	Name             string             `yaml:"name"`
	Cost             map[string]int64   `yaml:"cost"`
	GuaranteedRarity string             `yaml:"guaranteed_rarity"`
	Pity             PitySpec           `yaml:"pity"`
	RateModifiers    map[string]float64 `yaml:"rate_modifiers"`
	CategoryBonus    map[string]float64 `yaml:"category_bonus"`
	Scope            ScopeSpec          `yaml:"scope"`
	TimeLimited      bool               `yaml:"time_limited"`
	ExpiresAt        *time.Time         `yaml:"expires_at"`
}

// Catalog is the immutable, validated pool and item configuration.
type Catalog struct {
	version  string
	base     [domain.NumRarities]float64
	items    []domain.Item
	byRarity [domain.NumRarities][]domain.Item
	pools    map[string]*domain.Pool
	order    []string
	eligible map[string]*[domain.NumRarities][]domain.Item
}

// New validates doc and builds a catalog. Every problem is reported at once.
func New(doc Document) (*Catalog, error) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	c := &Catalog{
		version:  doc.Version,
		pools:    make(map[string]*domain.Pool, len(doc.Pools)),
		eligible: make(map[string]*[domain.NumRarities][]domain.Item, len(doc.Pools)),
	}

	rates := doc.BaseRates
	if len(rates) == 0 {
		rates = DefaultBaseRates
	}
	var sum float64
	for name, p := range rates {
		r, err := domain.ParseRarity(name)
		if err != nil {
			addf(ProblemUnknownRarity, "base_rates", name)
			continue
		}
		if p < 0 {
			addf(ProblemNegativeValue, "base_rates", name)
			continue
		}
		c.base[r] = p
		sum += p
	}
	if math.Abs(sum-1) > RateSumTolerance {
		addf(ProblemBaseRateSum, sum)
	}

	categories := make(map[string]bool)
	events := make(map[string]bool)
	seenItems := make(map[string]bool, len(doc.Items))
	for i, spec := range doc.Items {
		where := fmt.Sprintf("items[%d]", i)
		if spec.ID == "" {
			addf(ProblemMissingField, where, "id")
			continue
		}
		if seenItems[spec.ID] {
			addf(ProblemDuplicateItem, spec.ID)
			continue
		}
		seenItems[spec.ID] = true

		r, err := domain.ParseRarity(spec.Rarity)
		if err != nil {
			addf(ProblemUnknownRarity, where, spec.Rarity)
			continue
		}
		if spec.Category == "" {
			addf(ProblemMissingField, where, "category")
			continue
		}

		item := domain.Item{ID: spec.ID, Name: spec.Name, Rarity: r, Category: spec.Category, EventTag: spec.Event}
		if item.Name == "" {
			item.Name = item.ID
		}
		c.items = append(c.items, item)
		c.byRarity[r] = append(c.byRarity[r], item)
		categories[item.Category] = true
		if item.EventTag != "" {
			events[item.EventTag] = true
		}
	}

	if len(doc.Pools) == 0 {
		addf(ProblemNoPools)
	}
	for i, spec := range doc.Pools {
		pool, poolProblems := buildPool(i, spec, categories, events)
		problems = append(problems, poolProblems...)
		if pool == nil {
			continue
		}
		if _, dup := c.pools[pool.ID]; dup {
			addf(ProblemDuplicatePool, pool.ID)
			continue
		}
		c.pools[pool.ID] = pool
		c.order = append(c.order, pool.ID)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w:\n  - %s", domain.ErrInvalidCatalog, strings.Join(problems, "\n  - "))
	}

	for _, id := range c.order {
		pool := c.pools[id]
		var set [domain.NumRarities][]domain.Item
		for _, item := range c.items {
			if pool.Scope.Includes(item) {
				set[item.Rarity] = append(set[item.Rarity], item)
			}
		}
		c.eligible[id] = &set
	}
	return c, nil
}

func buildPool(index int, spec PoolSpec, categories, events map[string]bool) (*domain.Pool, []string) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if spec.ID == "" {
		addf(ProblemMissingField, fmt.Sprintf("pools[%d]", index), "id")
		return nil, problems
	}
	where := "pool " + spec.ID

	pool := &domain.Pool{
		ID:          spec.ID,
		Name:        spec.Name,
		Cost:        domain.Cost{},
		TimeLimited: spec.TimeLimited,
		Pity: domain.PitySystem{
			SoftPity:      spec.Pity.Soft,
			HardPity:      spec.Pity.Hard,
			LegendaryPity: spec.Pity.Legendary,
		},
	}
	if pool.Name == "" {
		pool.Name = pool.ID
	}

	for name, amount := range spec.Cost {
		c := domain.Currency(name)
		if !c.Valid() {
			addf(ProblemUnknownCurrency, where, name)
			continue
		}
		if amount < 0 {
			addf(ProblemNegativeValue, where, name)
			continue
		}
		pool.Cost[c] = amount
	}

	if spec.GuaranteedRarity != "" {
		r, err := domain.ParseRarity(spec.GuaranteedRarity)
		if err != nil {
			addf(ProblemUnknownRarity, where, spec.GuaranteedRarity)
		} else {
			pool.GuaranteedRarity = &r
		}
	}

	if spec.Pity.Soft < 1 || spec.Pity.Soft > spec.Pity.Hard {
		addf(ProblemPityOrder, spec.ID, spec.Pity.Soft, spec.Pity.Hard)
	}
	if spec.Pity.Legendary < 1 {
		addf(ProblemLegendaryPity, spec.ID)
	}

	if len(spec.RateModifiers) > 0 {
		pool.RateModifiers = make(map[domain.Rarity]float64, len(spec.RateModifiers))
		for name, m := range spec.RateModifiers {
			r, err := domain.ParseRarity(name)
			if err != nil {
				addf(ProblemUnknownRarity, where, name)
				continue
			}
			if m < 0 {
				addf(ProblemNegativeValue, where, name)
				continue
			}
			pool.RateModifiers[r] = m
		}
	}

	if len(spec.CategoryBonus) > 0 {
		pool.CategoryBonus = make(map[string]float64, len(spec.CategoryBonus))
		for category, b := range spec.CategoryBonus {
			if b < 0 {
				addf(ProblemNegativeValue, where, category)
				continue
			}
			pool.CategoryBonus[category] = b
		}
	}

	switch domain.ScopeMode(spec.Scope.Mode) {
	case "", domain.ScopeAll:
		pool.Scope = domain.ItemScope{Mode: domain.ScopeAll}
	case domain.ScopeCategory:
		if len(spec.Scope.Categories) == 0 {
			addf(ProblemScopeCategories, spec.ID)
		}
		for _, category := range spec.Scope.Categories {
			if !categories[category] {
				addf(ProblemUnknownCategory, spec.ID, category)
			}
		}
		pool.Scope = domain.ItemScope{Mode: domain.ScopeCategory, Categories: append([]string(nil), spec.Scope.Categories...)}
	case domain.ScopeEvent:
		if spec.Scope.Event == "" {
			addf(ProblemScopeEvent, spec.ID)
		} else if !events[spec.Scope.Event] {
			addf(ProblemUnknownEvent, spec.ID, spec.Scope.Event)
		}
		pool.Scope = domain.ItemScope{Mode: domain.ScopeEvent, EventTag: spec.Scope.Event}
	default:
		addf(ProblemUnknownScope, spec.ID, spec.Scope.Mode)
	}

	if spec.TimeLimited {
		if spec.ExpiresAt == nil || spec.ExpiresAt.IsZero() {
			addf(ProblemMissingExpiry, spec.ID)
		} else {
			pool.ExpiresAt = spec.ExpiresAt.UTC()
		}
	}

	return pool, problems
}

// Version returns the catalog document version.
func (c *Catalog) Version() string { return c.version }

// Pool returns the pool with id.
func (c *Catalog) Pool(id string) (*domain.Pool, bool) {
	p, ok := c.pools[id]
	return p, ok
}

// Pools returns every pool in document order.
func (c *Catalog) Pools() []*domain.Pool {
	out := make([]*domain.Pool, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.pools[id])
	}
	return out
}

// BaseRate returns the configured base probability of r.
func (c *Catalog) BaseRate(r domain.Rarity) float64 {
	if !r.Valid() {
		return 0
	}
	return c.base[r]
}

// Items returns every item in document order.
func (c *Catalog) Items() []domain.Item {
	return append([]domain.Item(nil), c.items...)
}

// EligibleItems returns the items of rarity r inside the scope of poolID.
// The returned slice must not be modified.
func (c *Catalog) EligibleItems(poolID string, r domain.Rarity) []domain.Item {
	set, ok := c.eligible[poolID]
	if !ok || !r.Valid() {
		return nil
	}
	return set[r]
}

// ItemsByRarity returns every item of rarity r. The slice must not be modified.
func (c *Catalog) ItemsByRarity(r domain.Rarity) []domain.Item {
	if !r.Valid() {
		return nil
	}
	return c.byRarity[r]
}

// Gaps lists the rarities with no item anywhere in the catalog.
func (c *Catalog) Gaps() []domain.Rarity {
	var gaps []domain.Rarity
	for _, r := range domain.AllRarities() {
		if len(c.byRarity[r]) == 0 {
			gaps = append(gaps, r)
		}
	}
	return gaps
}

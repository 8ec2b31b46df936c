package gacha

import (
	"context"
	"math"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// weightedItem is one entry of a cumulative weight table.
type weightedItem struct {
	item        domain.Item
	cumulWeight int
}

// ItemSelector turns a drawn rarity into a concrete item.
type ItemSelector struct {
	catalog Catalog
	rng     RandomSource
}

// NewItemSelector creates a selector over catalog.
func NewItemSelector(catalog Catalog, rng RandomSource) *ItemSelector {
	return &ItemSelector{catalog: catalog, rng: rng}
}

// Pick chooses an item of rarity r for pool. Items outside the pool scope are
// used when the scope has none of r; a placeholder is returned (and logged)
// when the whole catalog has none.
func (s *ItemSelector) Pick(ctx context.Context, pool *domain.Pool, r domain.Rarity) domain.Item {
	candidates := s.catalog.EligibleItems(pool.ID, r)
	if len(candidates) == 0 {
		candidates = s.catalog.ItemsByRarity(r)
	}
	if len(candidates) == 0 {
		logger.FromContext(ctx).Warn(LogMsgCatalogGap,
			"rarity", r.String(),
			"pool", pool.ID,
			"data_integrity", true,
			"error", domain.ErrCatalogGap)
		return domain.PlaceholderItem(r)
	}

	u := s.rng.Float64()
	if len(pool.CategoryBonus) == 0 {
		idx := int(u * float64(len(candidates)))
		if idx >= len(candidates) {
			idx = len(candidates) - 1
		}
		return candidates[idx]
	}

	table, total := buildWeightTable(candidates, pool.CategoryBonus)
	return selectWeighted(table, total, u)
}

// categoryWeight is the replication weight of an item under bonus.
// Categories without a bonus weigh as a bonus of 1.
func categoryWeight(category string, bonus map[string]float64) int {
	b, ok := bonus[category]
	if !ok {
		b = 1
	}
	w := int(math.Floor(b * CategoryWeightScale))
	if w < 1 {
		w = 1
	}
	return w
}

func buildWeightTable(items []domain.Item, bonus map[string]float64) ([]weightedItem, int) {
	table := make([]weightedItem, len(items))
	total := 0
	for i, item := range items {
		total += categoryWeight(item.Category, bonus)
		table[i] = weightedItem{item: item, cumulWeight: total}
	}
	return table, total
}

// selectWeighted returns the entry chosen by a weighted roll in [0, total).
// Equivalent to a uniform pick from a list with each item repeated weight times.
func selectWeighted(table []weightedItem, total int, u float64) domain.Item {
	roll := int(u * float64(total))
	lo, hi := 0, len(table)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if table[mid].cumulWeight <= roll {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return table[lo].item
}

package gacha

import (
	"encoding/json"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
)

// RateTable maps every rarity to a probability, indexed by domain.Rarity.
type RateTable [domain.NumRarities]float64

// Get returns the probability of r.
func (t RateTable) Get(r domain.Rarity) float64 {
	if !r.Valid() {
		return 0
	}
	return t[r]
}

// Sum returns the total mass of the table.
func (t RateTable) Sum() float64 {
	var s float64
	for _, p := range t {
		s += p
	}
	return s
}

// Normalize scales the table to sum to 1. A table without mass collapses to
// Common so a draw always has an outcome.
func (t RateTable) Normalize() RateTable {
	total := t.Sum()
	if total <= 0 {
		var out RateTable
		out[domain.RarityCommon] = 1
		return out
	}
	var out RateTable
	for i, p := range t {
		out[i] = p / total
	}
	return out
}

// Restrict zeroes every tier below min and renormalizes the remainder.
// If nothing at or above min has mass, min itself gets probability 1.
func (t RateTable) Restrict(min domain.Rarity) RateTable {
	var out RateTable
	for i := int(min); i < domain.NumRarities; i++ {
		out[i] = t[i]
	}
	if out.Sum() <= 0 {
		var forced RateTable
		forced[min] = 1
		return forced
	}
	return out.Normalize()
}

// Pick performs the inverse-CDF draw: tiers are walked in ascending order and
// the first tier with mass whose cumulative probability reaches u wins.
// fallback is returned when rounding leaves u above the final cumulative sum.
func (t RateTable) Pick(u float64, fallback domain.Rarity) domain.Rarity {
	var cumulative float64
	for _, r := range domain.AllRarities() {
		p := t[r]
		if p <= 0 {
			continue
		}
		cumulative += p
		if cumulative >= u {
			return r
		}
	}
	return fallback
}

// MarshalJSON renders the table keyed by rarity name.
func (t RateTable) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, domain.NumRarities)
	for _, r := range domain.AllRarities() {
		m[r.String()] = t[r]
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads a table keyed by rarity name.
func (t *RateTable) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out RateTable
	for name, p := range m {
		r, err := domain.ParseRarity(name)
		if err != nil {
			return err
		}
		out[r] = p
	}
	*t = out
	return nil
}

// RateEngine composes base rates, pool modifiers and pity boosts.
type RateEngine struct {
	base RateTable
}

// NewRateEngine builds an engine over the catalog base rates.
func NewRateEngine(base RateTable) *RateEngine {
	return &RateEngine{base: base.Normalize()}
}

// Base returns the normalized catalog base rates.
func (e *RateEngine) Base() RateTable {
	return e.base
}

// Compute returns the normalized table for the next pull on pool given pity.
func (e *RateEngine) Compute(pool *domain.Pool, pity domain.PityState) RateTable {
	rates := e.base
	for _, r := range domain.AllRarities() {
		rates[r] *= pool.Modifier(r)
	}
	rates = rates.Normalize()

	soft := pool.Pity.SoftPity
	if pity.EpicMisses >= soft {
		boost := 1 + float64(pity.EpicMisses-soft)*SoftPityEpicStep
		for _, r := range []domain.Rarity{domain.RarityEpic, domain.RarityLegendary, domain.RarityMythical} {
			rates[r] *= boost
		}
	}

	legendaryThreshold := float64(soft) * LegendarySoftPityFactor
	if float64(pity.LegendaryMisses) >= legendaryThreshold {
		boost := 1 + (float64(pity.LegendaryMisses)-legendaryThreshold)*SoftPityLegendaryStep
		for _, r := range []domain.Rarity{domain.RarityLegendary, domain.RarityMythical} {
			rates[r] *= boost
		}
	}

	return rates.Normalize()
}

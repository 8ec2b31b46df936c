package domain

import "time"

// ScopeMode selects which catalog items a pool may award.
type ScopeMode string

const (
	ScopeAll      ScopeMode = "all"
	ScopeCategory ScopeMode = "category"
	ScopeEvent    ScopeMode = "event"
)

// ItemScope restricts a pool to part of the catalog.
type ItemScope struct {
	Mode       ScopeMode `json:"mode"`
	Categories []string  `json:"categories,omitempty"`
	EventTag   string    `json:"event,omitempty"`
}

// Includes reports whether item is eligible under the scope.
func (s ItemScope) Includes(item Item) bool {
	switch s.Mode {
	case ScopeCategory:
		for _, c := range s.Categories {
			if c == item.Category {
				return true
			}
		}
		return false
	case ScopeEvent:
		return item.EventTag != "" && item.EventTag == s.EventTag
	default:
		return true
	}
}

// PitySystem holds the miss thresholds for one pool.
type PitySystem struct {
	SoftPity      int `json:"soft_pity"`
	HardPity      int `json:"hard_pity"`
	LegendaryPity int `json:"legendary_pity"`
}

// Pool is an immutable pull configuration loaded from the catalog.
type Pool struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Cost             Cost               `json:"cost"`
	GuaranteedRarity *Rarity            `json:"guaranteed_rarity,omitempty"`
	Pity             PitySystem         `json:"pity"`
	RateModifiers    map[Rarity]float64 `json:"rate_modifiers,omitempty"`
	CategoryBonus    map[string]float64 `json:"category_bonus,omitempty"`
	Scope            ItemScope          `json:"scope"`
	TimeLimited      bool               `json:"time_limited"`
	ExpiresAt        time.Time          `json:"expires_at,omitempty"`
}

// Modifier returns the rate multiplier for r, defaulting to 1.
func (p *Pool) Modifier(r Rarity) float64 {
	if m, ok := p.RateModifiers[r]; ok {
		return m
	}
	return 1.0
}

// Available reports whether the pool can be pulled at now.
func (p *Pool) Available(now time.Time) bool {
	if !p.TimeLimited {
		return true
	}
	return now.Before(p.ExpiresAt)
}

// Floor returns the guaranteed minimum rarity, if any.
func (p *Pool) Floor() (Rarity, bool) {
	if p.GuaranteedRarity == nil {
		return RarityCommon, false
	}
	return *p.GuaranteedRarity, true
}

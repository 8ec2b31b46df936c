package domain

import "time"

// PityState holds the miss counters for one pool.
type PityState struct {
	EpicMisses      int `json:"epic_misses"`
	LegendaryMisses int `json:"legendary_misses"`
}

// Next returns the counters after a pull that produced rarity r.
func (p PityState) Next(r Rarity) PityState {
	next := p
	if r.AtLeast(RarityEpic) {
		next.EpicMisses = 0
	} else {
		next.EpicMisses++
	}
	if r.AtLeast(RarityLegendary) {
		next.LegendaryMisses = 0
	} else {
		next.LegendaryMisses++
	}
	return next
}

// PullTrigger records which rule decided a pull's rarity.
type PullTrigger string

const (
	TriggerRate           PullTrigger = "rate"
	TriggerHardLegendary  PullTrigger = "hard_legendary"
	TriggerHardEpic       PullTrigger = "hard_epic"
	TriggerGuaranteedRare PullTrigger = "guaranteed_rare"
	TriggerPoolFloor      PullTrigger = "pool_floor"
)

// PullResult is the immutable record of one unit pull.
type PullResult struct {
	ID         string      `json:"id"`
	Rarity     Rarity      `json:"rarity"`
	Item       Item        `json:"item"`
	PoolID     string      `json:"pool_id"`
	Timestamp  time.Time   `json:"timestamp"`
	BatchIndex int         `json:"batch_index"`
	Trigger    PullTrigger `json:"trigger"`
}

// Statistics are derived from every pull ever made, not only the retained history.
type Statistics struct {
	TotalPulls         int64            `json:"total_pulls"`
	SpendByCurrency    Cost             `json:"spend_by_currency"`
	ObtainedByRarity   map[Rarity]int64 `json:"obtained_by_rarity"`
	AverageRarityLevel float64          `json:"average_rarity_level"`
	LuckScore          int              `json:"luck_score"`
}

// BatchResult is returned from a completed multi-pull.
type BatchResult struct {
	Results            []PullResult `json:"results"`
	PoolID             string       `json:"pool_id"`
	Count              int          `json:"count"`
	TotalCost          Cost         `json:"total_cost"`
	GuaranteedRareUsed bool         `json:"guaranteed_rare_used"`
}

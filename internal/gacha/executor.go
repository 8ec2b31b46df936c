package gacha

import "github.com/osse101/BrandishGacha_Go/internal/domain"

// DrawMode selects between a normal draw and the batch rare guarantee.
type DrawMode int

const (
	DrawStandard DrawMode = iota
	DrawGuaranteedRare
)

// Draw is the outcome of one executor step.
type Draw struct {
	Rarity  domain.Rarity
	Trigger domain.PullTrigger
	Pity    domain.PityState
}

// PullExecutor draws exactly one rarity per call and threads pity forward.
type PullExecutor struct {
	rng RandomSource
}

// NewPullExecutor creates an executor drawing from rng.
func NewPullExecutor(rng RandomSource) *PullExecutor {
	return &PullExecutor{rng: rng}
}

// Draw applies, first match wins: hard legendary pity, hard epic pity, then an
// inverse-CDF draw (restricted to Rare and above in guaranteed mode). The
// pool's guaranteed floor is applied last. The returned Pity is the state for
// the next pull.
func (x *PullExecutor) Draw(pool *domain.Pool, rates RateTable, pity domain.PityState, mode DrawMode) Draw {
	var d Draw

	switch {
	case pity.LegendaryMisses >= pool.Pity.LegendaryPity:
		d.Rarity, d.Trigger = domain.RarityLegendary, domain.TriggerHardLegendary

	case pity.EpicMisses >= pool.Pity.HardPity:
		d.Trigger = domain.TriggerHardEpic
		if x.rng.Float64() < HardEpicLegendaryChance {
			d.Rarity = domain.RarityLegendary
		} else {
			d.Rarity = domain.RarityEpic
		}

	case mode == DrawGuaranteedRare:
		d.Rarity = rates.Restrict(domain.RarityRare).Pick(x.rng.Float64(), domain.RarityRare)
		d.Trigger = domain.TriggerGuaranteedRare

	default:
		d.Rarity = rates.Pick(x.rng.Float64(), domain.RarityCommon)
		d.Trigger = domain.TriggerRate
	}

	if floor, ok := pool.Floor(); ok && d.Rarity < floor {
		d.Rarity, d.Trigger = floor, domain.TriggerPoolFloor
	}

	d.Pity = pity.Next(d.Rarity)
	return d
}

package gacha

import (
	"math"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
)

// StatisticsRecord is the persisted accumulator behind domain.Statistics.
type StatisticsRecord struct {
	TotalPulls       int64                   `json:"total_pulls"`
	SpendByCurrency  domain.Cost             `json:"spend_by_currency"`
	ObtainedByRarity map[domain.Rarity]int64 `json:"obtained_by_rarity"`
	RankSum          int64                   `json:"rank_sum"`
}

// HistoryLedger keeps the most recent pulls and running statistics over all pulls.
type HistoryLedger struct {
	entries           []domain.PullResult
	limit             int
	stats             StatisticsRecord
	baseLegendaryRate float64
}

// NewHistoryLedger creates a ledger retaining limit entries. baseLegendaryRate
// is the catalog probability of Legendary-or-above, used for the luck score.
func NewHistoryLedger(limit int, baseLegendaryRate float64) *HistoryLedger {
	if limit <= 0 {
		limit = domain.HistoryLimit
	}
	return &HistoryLedger{
		limit:             limit,
		baseLegendaryRate: baseLegendaryRate,
		stats: StatisticsRecord{
			SpendByCurrency:  domain.Cost{},
			ObtainedByRarity: map[domain.Rarity]int64{},
		},
	}
}

// Append records results in order and drops the oldest entries past the limit.
func (l *HistoryLedger) Append(results ...domain.PullResult) {
	for _, res := range results {
		l.stats.TotalPulls++
		l.stats.ObtainedByRarity[res.Rarity]++
		l.stats.RankSum += int64(res.Rarity.TierRank())
	}

	l.entries = append(l.entries, results...)
	if over := len(l.entries) - l.limit; over > 0 {
		// drop oldest
		l.entries = l.entries[over:]
	}
}

// RecordSpend adds a batch cost to the spend totals.
func (l *HistoryLedger) RecordSpend(cost domain.Cost) {
	for c, amount := range cost {
		l.stats.SpendByCurrency[c] += amount
	}
}

// Len returns the number of retained entries.
func (l *HistoryLedger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the retained history, oldest first.
func (l *HistoryLedger) Entries() []domain.PullResult {
	return append([]domain.PullResult(nil), l.entries...)
}

// Recent returns up to n of the newest entries, oldest first.
func (l *HistoryLedger) Recent(n int) []domain.PullResult {
	if n <= 0 || n >= len(l.entries) {
		return l.Entries()
	}
	return append([]domain.PullResult(nil), l.entries[len(l.entries)-n:]...)
}

// Statistics derives the public statistics view.
func (l *HistoryLedger) Statistics() domain.Statistics {
	out := domain.Statistics{
		TotalPulls:       l.stats.TotalPulls,
		SpendByCurrency:  l.stats.SpendByCurrency.Clone(),
		ObtainedByRarity: make(map[domain.Rarity]int64, len(l.stats.ObtainedByRarity)),
		LuckScore:        100,
	}
	for r, n := range l.stats.ObtainedByRarity {
		out.ObtainedByRarity[r] = n
	}
	if l.stats.TotalPulls == 0 {
		return out
	}

	out.AverageRarityLevel = float64(l.stats.RankSum) / float64(l.stats.TotalPulls)

	expected := float64(l.stats.TotalPulls) * l.baseLegendaryRate
	if expected > 0 {
		observed := l.stats.ObtainedByRarity[domain.RarityLegendary] + l.stats.ObtainedByRarity[domain.RarityMythical]
		out.LuckScore = int(math.Round(float64(observed) / expected * 100))
	}
	return out
}

// Record returns a persistable copy of the accumulator.
func (l *HistoryLedger) Record() StatisticsRecord {
	rec := StatisticsRecord{
		TotalPulls:       l.stats.TotalPulls,
		SpendByCurrency:  l.stats.SpendByCurrency.Clone(),
		ObtainedByRarity: make(map[domain.Rarity]int64, len(l.stats.ObtainedByRarity)),
		RankSum:          l.stats.RankSum,
	}
	for r, n := range l.stats.ObtainedByRarity {
		rec.ObtainedByRarity[r] = n
	}
	return rec
}

// Restore replaces the ledger contents with persisted data.
func (l *HistoryLedger) Restore(entries []domain.PullResult, rec StatisticsRecord) {
	if over := len(entries) - l.limit; over > 0 {
		entries = entries[over:]
	}
	l.entries = append([]domain.PullResult(nil), entries...)

	l.stats = StatisticsRecord{
		TotalPulls:       rec.TotalPulls,
		SpendByCurrency:  domain.Cost{},
		ObtainedByRarity: map[domain.Rarity]int64{},
		RankSum:          rec.RankSum,
	}
	for c, v := range rec.SpendByCurrency {
		l.stats.SpendByCurrency[c] = v
	}
	for r, n := range rec.ObtainedByRarity {
		l.stats.ObtainedByRarity[r] = n
	}
}

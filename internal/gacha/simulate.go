package gacha

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
	"github.com/osse101/BrandishGacha_Go/internal/worker"
)

// SimParams configures a Monte Carlo run. A zero Seed picks a random one.
type SimParams struct {
	Trials  int    `json:"trials"`
	Seed    uint64 `json:"seed"`
	Workers int    `json:"workers"`
}

// SimulationReport summarizes pulls needed to reach Legendary or above.
type SimulationReport struct {
	PoolID       string                  `json:"pool_id"`
	Trials       int                     `json:"trials"`
	Seed         uint64                  `json:"seed"`
	TotalPulls   int64                   `json:"total_pulls"`
	Mean         float64                 `json:"mean"`
	StdDev       float64                 `json:"stddev"`
	P50          float64                 `json:"p50"`
	P90          float64                 `json:"p90"`
	P99          float64                 `json:"p99"`
	Max          int                     `json:"max"`
	RarityCounts map[domain.Rarity]int64 `json:"rarity_counts"`
}

// simChunk runs trials [start, end) and writes into its own slots.
type simChunk struct {
	pool    *domain.Pool
	rates   *RateEngine
	seed    uint64
	start   int
	end     int
	samples []int
	counts  *[domain.NumRarities]int64
}

func (c *simChunk) Process(ctx context.Context) error {
	for i := c.start; i < c.end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.samples[i] = runTrial(c.pool, c.rates, NewSeededSource(c.seed+uint64(i)), c.counts)
	}
	return nil
}

// runTrial pulls single draws from fresh pity until Legendary or above.
func runTrial(pool *domain.Pool, rates *RateEngine, rng RandomSource, counts *[domain.NumRarities]int64) int {
	executor := NewPullExecutor(rng)
	limit := pool.Pity.LegendaryPity + 1

	var pity domain.PityState
	pulls := 0
	for pulls < limit {
		d := executor.Draw(pool, rates.Compute(pool, pity), pity, DrawStandard)
		pulls++
		counts[d.Rarity]++
		if d.Rarity.AtLeast(domain.RarityLegendary) {
			break
		}
		pity = d.Pity
	}
	return pulls
}

// Simulate measures pulls-until-first-Legendary on poolID, fanning trials out
// over a worker pool. Results are reproducible for a given seed.
func Simulate(ctx context.Context, catalog Catalog, poolID string, params SimParams) (*SimulationReport, error) {
	pool, ok := catalog.Pool(poolID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPoolNotFound, poolID)
	}
	if params.Trials == 0 {
		params.Trials = DefaultSimulationTrials
	}
	if params.Trials < 0 || params.Trials > MaxSimulationTrials {
		return nil, fmt.Errorf("%w: trials must be between 1 and %d", domain.ErrInvalidArgument, MaxSimulationTrials)
	}
	if params.Workers <= 0 {
		params.Workers = DefaultSimulationWorkers
	}
	if params.Seed == 0 {
		params.Seed = randomSeed()
	}

	started := time.Now()
	rates := NewRateEngine(BaseRates(catalog))
	samples := make([]int, params.Trials)

	numChunks := (params.Trials + SimulationChunkSize - 1) / SimulationChunkSize
	chunkCounts := make([][domain.NumRarities]int64, numChunks)

	workers := worker.NewPool(params.Workers, numChunks)
	workers.Start(ctx)
	for i := 0; i < numChunks; i++ {
		end := (i + 1) * SimulationChunkSize
		if end > params.Trials {
			end = params.Trials
		}
		job := &simChunk{
			pool:    pool,
			rates:   rates,
			seed:    params.Seed,
			start:   i * SimulationChunkSize,
			end:     end,
			samples: samples,
			counts:  &chunkCounts[i],
		}
		if err := workers.Enqueue(ctx, job); err != nil {
			workers.Stop()
			return nil, err
		}
	}
	failed := workers.Stop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed > 0 {
		return nil, fmt.Errorf("%s: %d of %d chunks", ErrMsgSimulationChunks, failed, numChunks)
	}

	report := summarize(samples)
	report.PoolID = pool.ID
	report.Seed = params.Seed
	report.RarityCounts = make(map[domain.Rarity]int64, domain.NumRarities)
	for _, cc := range chunkCounts {
		for r, n := range cc {
			if n > 0 {
				report.RarityCounts[domain.Rarity(r)] += n
			}
		}
	}

	logger.FromContext(ctx).Info(LogMsgSimulationDone,
		"pool", pool.ID,
		"trials", report.Trials,
		"mean", report.Mean,
		"duration", time.Since(started))
	return report, nil
}

func randomSeed() uint64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(buf[:]) | 1
}

// summarize computes mean, population stddev and interpolated percentiles.
func summarize(xs []int) *SimulationReport {
	n := len(xs)
	report := &SimulationReport{Trials: n}
	if n == 0 {
		return report
	}

	var sum float64
	for _, v := range xs {
		sum += float64(v)
		report.TotalPulls += int64(v)
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}

	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)

	report.Mean = mean
	report.StdDev = math.Sqrt(acc / float64(n))
	report.P50 = percentile(sorted, 0.50)
	report.P90 = percentile(sorted, 0.90)
	report.P99 = percentile(sorted, 0.99)
	report.Max = sorted[n-1]
	return report
}

// percentile interpolates linearly between closest ranks of sorted.
func percentile(sorted []int, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n == 1 || p <= 0:
		return float64(sorted[0])
	case p >= 1:
		return float64(sorted[n-1])
	}
	pos := p * float64(n-1)
	i := int(math.Floor(pos))
	f := pos - float64(i)
	if i+1 >= n {
		return float64(sorted[i])
	}
	return float64(sorted[i])*(1-f) + float64(sorted[i+1])*f
}

// Package leaktest verifies that components stop every goroutine they start.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// DefaultSettleTimeout bounds how long Settled waits for goroutines to exit
const DefaultSettleTimeout = 2 * time.Second

const pollInterval = 10 * time.Millisecond

// Goroutines records a baseline goroutine count.
type Goroutines struct {
	t        testing.TB
	baseline int
}

// Track records the current goroutine count as the baseline.
func Track(t testing.TB) *Goroutines {
	t.Helper()
	runtime.Gosched()
	return &Goroutines{t: t, baseline: runtime.NumGoroutine()}
}

// Baseline returns the recorded count.
func (g *Goroutines) Baseline() int {
	return g.baseline
}

// Settled waits until at most tolerance goroutines above the baseline remain,
// failing the test once timeout elapses.
func (g *Goroutines) Settled(tolerance int, timeout time.Duration) {
	g.t.Helper()

	limit := g.baseline + tolerance
	deadline := time.Now().Add(timeout)
	for {
		runtime.Gosched()
		current := runtime.NumGoroutine()
		if current <= limit {
			return
		}
		if time.Now().After(deadline) {
			g.t.Errorf("goroutine leak: baseline=%d current=%d tolerance=%d", g.baseline, current, tolerance)
			return
		}
		time.Sleep(pollInterval)
	}
}

// VerifyNone runs fn and fails if it leaves goroutines behind.
func VerifyNone(t testing.TB, fn func()) {
	t.Helper()
	g := Track(t)
	fn()
	g.Settled(0, DefaultSettleTimeout)
}

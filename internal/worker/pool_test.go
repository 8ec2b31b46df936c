package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/BrandishGacha_Go/internal/testing/leaktest"
)

type testJob struct {
	executed *int32
	err      error
}

func (j *testJob) Process(ctx context.Context) error {
	atomic.AddInt32(j.executed, 1)
	return j.err
}

func TestPool(t *testing.T) {
	var executed int32
	pool := NewPool(TestWorkerCount, TestQueueSize)
	pool.Start(context.Background())

	job := &testJob{executed: &executed}
	require.NoError(t, pool.Enqueue(context.Background(), job))
	require.NoError(t, pool.Enqueue(context.Background(), job))

	// Stop drains the queue before returning
	pool.Stop()

	assert.Equal(t, int32(TestExpectedJobCount), atomic.LoadInt32(&executed))
}

func TestPool_FailingJobDoesNotStopWorker(t *testing.T) {
	var executed int32
	pool := NewPool(1, TestQueueSize)
	pool.Start(context.Background())

	require.NoError(t, pool.Enqueue(context.Background(), &testJob{executed: &executed, err: errors.New("boom")}))
	require.NoError(t, pool.Enqueue(context.Background(), &testJob{executed: &executed}))

	assert.Equal(t, int64(1), pool.Stop())
	assert.Equal(t, int32(2), atomic.LoadInt32(&executed))
}

func TestPool_PanickingJobIsCounted(t *testing.T) {
	pool := NewPool(1, TestQueueSize)
	pool.Start(context.Background())

	var after atomic.Bool
	require.NoError(t, pool.Enqueue(context.Background(), JobFunc(func(context.Context) error {
		panic("bad chunk")
	})))
	require.NoError(t, pool.Enqueue(context.Background(), JobFunc(func(context.Context) error {
		after.Store(true)
		return nil
	})))

	assert.Equal(t, int64(1), pool.Stop())
	assert.True(t, after.Load(), "worker survives the panic")
}

func TestNewPool_ClampsSizes(t *testing.T) {
	pool := NewPool(0, -3)
	assert.Equal(t, 1, pool.workers)
	assert.Equal(t, 0, cap(pool.queue))
}

func TestPool_EnqueueAfterStop(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	var executed int32
	err := pool.Enqueue(context.Background(), &testJob{executed: &executed})
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPool_EnqueueHonoursContext(t *testing.T) {
	// no workers started, unbuffered queue: the send can never complete
	pool := NewPool(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed int32
	err := pool.Enqueue(ctx, &testJob{executed: &executed})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_StopReleasesWorkers(t *testing.T) {
	leaktest.VerifyNone(t, func() {
		var executed int32
		pool := NewPool(8, TestQueueSize)
		pool.Start(context.Background())
		for i := 0; i < TestQueueSize; i++ {
			require.NoError(t, pool.Enqueue(context.Background(), &testJob{executed: &executed}))
		}
		pool.Stop()
		assert.Equal(t, int32(TestQueueSize), atomic.LoadInt32(&executed))
	})
}

package infrastructure

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	wp := NewWorkerPool(4)
	wp.Start()

	var count int64
	for i := 0; i < 100; i++ {
		require.NoError(t, wp.Submit(func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		}))
	}

	require.NoError(t, wp.Wait())
	assert.Equal(t, int64(100), atomic.LoadInt64(&count))
}

func TestWorkerPool_FirstErrorCancels(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Start()

	boom := errors.New("boom")
	_ = wp.Submit(func(ctx context.Context) error { return boom })

	// Les tâches suivantes voient le contexte annulé ou ne sont pas soumises
	for i := 0; i < 20; i++ {
		if err := wp.Submit(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Millisecond):
				return nil
			}
		}); err != nil {
			assert.ErrorIs(t, err, ErrPoolStopped)
			break
		}
	}

	assert.ErrorIs(t, wp.Wait(), boom)
}

func TestWorkerPool_ParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wp := NewWorkerPoolWithContext(ctx, 2)
	wp.Start()
	cancel()

	err := wp.Submit(func(ctx context.Context) error { return nil })
	if err != nil {
		assert.ErrorIs(t, err, ErrPoolStopped)
	}
	assert.ErrorIs(t, wp.Wait(), context.Canceled)
}

func TestWorkerPool_StopIsImmediate(t *testing.T) {
	wp := NewWorkerPool(0)
	assert.Equal(t, 1, wp.WorkerCount())
	wp.Start()
	wp.Stop()

	assert.ErrorIs(t, wp.Submit(func(ctx context.Context) error { return nil }), ErrPoolStopped)
}

// ========================================
// Benchmarks: nombre de workers
// ========================================

func benchmarkWorkerPool(b *testing.B, workers int) {
	wp := NewWorkerPool(workers)
	wp.Start()
	defer wp.Stop()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = wp.Submit(func(ctx context.Context) error {
			_ = 1 + 1
			return nil
		})
	}
}

func BenchmarkWorkerPool_1Worker_FastTasks(b *testing.B)  { benchmarkWorkerPool(b, 1) }
func BenchmarkWorkerPool_4Workers_FastTasks(b *testing.B) { benchmarkWorkerPool(b, 4) }
func BenchmarkWorkerPool_8Workers_FastTasks(b *testing.B) { benchmarkWorkerPool(b, 8) }

package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_BoundsConcurrency(t *testing.T) {
	g := New(3)
	ctx := context.Background()

	var cur, peak atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(ctx); err != nil {
				t.Error(err)
				return
			}
			defer g.Release()

			n := cur.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			cur.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(3))
	assert.Equal(t, 0, g.InUse())
}

func TestGate_AcquireHonoursContext(t *testing.T) {
	g := New(1)
	require.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, g.InUse())

	g.Release()
	assert.Equal(t, 0, g.InUse())
	assert.True(t, g.TryAcquire())
}

func TestGate_FIFO(t *testing.T) {
	g := New(1)
	require.NoError(t, g.Acquire(context.Background()))

	order := make(chan int, 3)
	for i := range 3 {
		go func() {
			_ = g.Acquire(context.Background())
			order <- i
			g.Release()
		}()
		// let waiter i enqueue before the next one
		time.Sleep(10 * time.Millisecond)
	}

	g.Release()
	assert.Equal(t, 0, <-order)
	assert.Equal(t, 1, <-order)
	assert.Equal(t, 2, <-order)
}

func TestNewSet_Defaults(t *testing.T) {
	s := NewSet(Limits{})

	assert.Equal(t, DefaultDownloads, s.Download.Capacity())
	assert.Equal(t, DefaultChunkFetches, s.ChunkFetch.Capacity())
	assert.Equal(t, DefaultWriteBuffers, s.WriteBuffer.Capacity())
	assert.Equal(t, 1, s.Admission.Capacity())

	custom := NewSet(Limits{Downloads: 1, ChunkFetches: 2, WriteBuffers: 4})
	assert.Equal(t, 1, custom.Download.Capacity())
	assert.Equal(t, 2, custom.ChunkFetch.Capacity())
	assert.Equal(t, 4, custom.WriteBuffer.Capacity())
}

func TestNew_ClampsCapacity(t *testing.T) {
	assert.Equal(t, 1, New(0).Capacity())
	assert.Equal(t, 1, New(-5).Capacity())
}

// Package gate provides the counting semaphores that bound transfer
// concurrency: whole-file downloads, chunk fetches, buffered chunk writes and
// the 1-slot admission lock around the active-transfer registry.
//
// Waiters are served in FIFO order. A permit must be released by whoever
// acquired it, exactly once.
package gate

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is a FIFO-fair counting semaphore.
type Gate struct {
	sem   *semaphore.Weighted
	cap   int64
	inUse atomic.Int64
}

// New returns a gate with the given number of permits (at least one).
func New(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(capacity)), cap: int64(capacity)}
}

// Acquire blocks until a permit is available or ctx is done. On error no
// permit is held.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.inUse.Add(1)
	return nil
}

// TryAcquire takes a permit without blocking.
func (g *Gate) TryAcquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.inUse.Add(1)
	return true
}

// Release returns a permit. It panics when more permits are released than
// were acquired.
func (g *Gate) Release() {
	g.inUse.Add(-1)
	g.sem.Release(1)
}

// Capacity is the total number of permits.
func (g *Gate) Capacity() int { return int(g.cap) }

// InUse is the number of permits currently held.
func (g *Gate) InUse() int { return int(g.inUse.Load()) }

// Limits configures a Set. Zero values fall back to the defaults.
type Limits struct {
	Downloads    int
	ChunkFetches int
	WriteBuffers int
}

const (
	DefaultDownloads    = 3
	DefaultChunkFetches = 32
	DefaultWriteBuffers = 256
)

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{Downloads: DefaultDownloads, ChunkFetches: DefaultChunkFetches, WriteBuffers: DefaultWriteBuffers}
}

// Set holds the process-wide gates of the download engine.
type Set struct {
	// Download bounds concurrent whole-file transfers.
	Download *Gate
	// ChunkFetch bounds concurrent chunk fetches across all transfers.
	ChunkFetch *Gate
	// WriteBuffer bounds chunks fetched but not yet written, across all
	// transfers.
	WriteBuffer *Gate
	// Admission serializes check-and-insert on the active-transfer registry.
	Admission *Gate
}

// NewSet builds a Set from l.
func NewSet(l Limits) *Set {
	d := DefaultLimits()
	if l.Downloads <= 0 {
		l.Downloads = d.Downloads
	}
	if l.ChunkFetches <= 0 {
		l.ChunkFetches = d.ChunkFetches
	}
	if l.WriteBuffers <= 0 {
		l.WriteBuffers = d.WriteBuffers
	}
	return &Set{
		Download:    New(l.Downloads),
		ChunkFetch:  New(l.ChunkFetches),
		WriteBuffer: New(l.WriteBuffers),
		Admission:   New(1),
	}
}

package transfer

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/drivesync/internal/client/chunks"
	"github.com/dmitrijs2005/drivesync/internal/common"
)

// chunkResult is a finished chunk task. path holds the plaintext on success.
type chunkResult struct {
	index int
	path  string
	err   error
}

// reconstruct fetches all chunks of t and assembles them, in order, into a
// fresh temporary file whose path it returns. On failure nothing is left
// behind.
//
// Every dispatched chunk holds one write-buffer permit from dispatch until
// the writer applies or discards it, and one chunk-fetch permit while it is
// being fetched.
func (e *Engine) reconstruct(ctx context.Context, t *transfer) (string, error) {
	target := e.deps.FS.TempPath()
	results := make(chan chunkResult)

	writerDone := make(chan error, 1)
	go func() {
		writerDone <- e.write(t, target, results)
	}()

	var wg sync.WaitGroup
	for i := 0; i < t.chunkCount; i++ {
		if err := t.waitResumed(); err != nil {
			break
		}
		if err := e.deps.Gates.WriteBuffer.Acquire(t.ctx); err != nil {
			break
		}
		if err := e.deps.Gates.ChunkFetch.Acquire(t.ctx); err != nil {
			e.deps.Gates.WriteBuffer.Release()
			break
		}

		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			results <- e.fetchChunk(ctx, t, index)
		}(i)
	}

	wg.Wait()
	close(results)
	err := <-writerDone

	if err == nil {
		err = context.Cause(t.ctx)
	}
	if err == nil && t.snapshot().NextWriteIndex != t.chunkCount {
		err = fmt.Errorf("%w: incomplete reconstruction", common.ErrFetchFailed)
	}
	if err != nil {
		_ = e.deps.FS.Unlink(target)
		return "", err
	}
	return target, nil
}

// fetchChunk runs one chunk task. The fetch itself uses the caller's ctx, so
// stopping the transfer never interrupts a fetch in flight.
func (e *Engine) fetchChunk(ctx context.Context, t *transfer, index int) chunkResult {
	defer e.deps.Gates.ChunkFetch.Release()

	if err := t.waitResumed(); err != nil {
		return chunkResult{index: index, err: err}
	}

	f := t.req.File
	path := e.deps.FS.TempPath()
	err := e.deps.Fetcher.Fetch(ctx, chunks.Request{
		FileID:   f.ID,
		Region:   f.Region,
		Bucket:   f.Bucket,
		Index:    index,
		Key:      f.Key,
		Version:  f.Version,
		DestPath: path,
	})
	if err != nil {
		_ = e.deps.FS.Unlink(path)
		return chunkResult{index: index, err: fmt.Errorf("%w: chunk %d: %w", common.ErrFetchFailed, index, err)}
	}
	return chunkResult{index: index, path: path}
}

// write is the single writer of a transfer. Chunks that arrive early wait in
// pending until every lower index has been applied. After the first error,
// or once the transfer is aborted, every further chunk is discarded.
func (e *Engine) write(t *transfer, target string, results <-chan chunkResult) error {
	pending := make(map[int]chunkResult)
	var firstErr error

	discard := func(r chunkResult) {
		if r.path != "" {
			_ = e.deps.FS.Unlink(r.path)
		}
		e.deps.Gates.WriteBuffer.Release()
	}

	abort := func(err error) {
		if firstErr == nil {
			firstErr = err
			t.fail(err)
		}
	}

	for r := range results {
		if firstErr == nil {
			if r.err != nil {
				abort(r.err)
			} else if c := context.Cause(t.ctx); c != nil {
				abort(c)
			}
		}
		if firstErr != nil {
			discard(r)
			continue
		}

		pending[r.index] = r
		for firstErr == nil {
			next := t.snapshot().NextWriteIndex
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			if err := e.apply(target, p); err != nil {
				discard(p)
				abort(err)
				break
			}
			e.deps.Gates.WriteBuffer.Release()
			t.advance()
		}
	}

	for _, p := range pending {
		discard(p)
	}
	return firstErr
}

// apply moves chunk 0 into place and appends every later chunk.
func (e *Engine) apply(target string, r chunkResult) error {
	if r.index == 0 {
		if err := e.deps.FS.Move(r.path, target); err != nil {
			return fmt.Errorf("write chunk 0: %w", err)
		}
		return nil
	}

	if err := e.deps.FS.Append(target, r.path); err != nil {
		return fmt.Errorf("write chunk %d: %w", r.index, err)
	}
	return e.deps.FS.Unlink(r.path)
}

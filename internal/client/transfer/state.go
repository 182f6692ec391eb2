package transfer

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/common"
)

// transfer is the per-file state of one running download.
//
// ctx is cancelled on stop (cause common.ErrStopped), on the first failure
// (cause is the error) and when the transfer ends. Pausing replaces resumed
// with an open channel; resuming closes it.
type transfer struct {
	id         string
	req        Request
	chunkCount int

	ctx         context.Context
	cancel      context.CancelCauseFunc
	unsubscribe func()

	mu      sync.Mutex
	state   models.TransferState
	resumed chan struct{}
	next    int
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func newTransfer(parent context.Context, req Request, chunkCount int) *transfer {
	ctx, cancel := context.WithCancelCause(parent)
	return &transfer{
		id:          req.File.ID,
		req:         req,
		chunkCount:  chunkCount,
		ctx:         ctx,
		cancel:      cancel,
		unsubscribe: func() {},
		state:       models.TransferActive,
		resumed:     closedCh,
	}
}

// handle applies control events addressed to this transfer.
func (t *transfer) handle(ev models.Event) {
	if ev.FileID != t.id {
		return
	}
	switch ev.Kind {
	case models.EventPauseTransfer:
		t.pause()
	case models.EventResumeTransfer:
		t.resume()
	case models.EventStopTransfer:
		t.stop()
	}
}

func (t *transfer) pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == models.TransferActive {
		t.state = models.TransferPaused
		t.resumed = make(chan struct{})
	}
}

func (t *transfer) resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == models.TransferPaused {
		t.state = models.TransferActive
		close(t.resumed)
		t.resumed = closedCh
	}
}

func (t *transfer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	if t.state == models.TransferPaused {
		close(t.resumed)
		t.resumed = closedCh
	}
	t.state = models.TransferStopped
	t.cancel(common.ErrStopped)
}

// fail aborts the transfer with err unless it was already aborted.
func (t *transfer) fail(err error) {
	t.cancel(err)
}

// finish records the terminal state.
func (t *transfer) finish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	if t.state == models.TransferPaused {
		close(t.resumed)
		t.resumed = closedCh
	}
	switch {
	case err == nil:
		t.state = models.TransferDone
	case isStopped(err):
		t.state = models.TransferStopped
	default:
		t.state = models.TransferFailed
	}
}

// waitResumed blocks while the transfer is paused. It returns the abort
// cause once the transfer is stopped or failed.
func (t *transfer) waitResumed() error {
	for {
		if err := context.Cause(t.ctx); err != nil {
			return err
		}

		t.mu.Lock()
		ch := t.resumed
		t.mu.Unlock()

		select {
		case <-ch:
			if t.ctx.Err() == nil {
				t.mu.Lock()
				paused := t.state == models.TransferPaused
				t.mu.Unlock()
				if !paused {
					return nil
				}
			}
		case <-t.ctx.Done():
		}
	}
}

func (t *transfer) advance() {
	t.mu.Lock()
	t.next++
	t.mu.Unlock()
}

func (t *transfer) snapshot() models.TransferTask {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.TransferTask{
		FileID:         t.id,
		Name:           t.req.File.Name,
		Destination:    t.req.Destination,
		ChunkCount:     t.chunkCount,
		NextWriteIndex: t.next,
		Paused:         t.state == models.TransferPaused,
		Stopped:        t.state == models.TransferStopped,
		State:          t.state,
	}
}

func isStopped(err error) bool {
	return errors.Is(err, common.ErrStopped)
}

// cause prefers the cancellation cause of ctx over err.
func cause(ctx context.Context, err error) error {
	if c := context.Cause(ctx); c != nil {
		return c
	}
	return err
}

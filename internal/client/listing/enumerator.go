// Package listing turns the server's streamed directory listing into rows
// of the sync cache and notifies an observer as items become available.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/items"
	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/dbx"
	"github.com/dmitrijs2005/drivesync/internal/logging"
)

// BatchSize is the largest batch handed to an Observer.
const BatchSize = 64

// Source opens the listing of one folder.
type Source interface {
	Open(ctx context.Context, folderID string) (io.ReadCloser, error)
}

// Observer receives the result of one enumeration: one or more batches,
// then exactly one of FinishEnumerating or FinishWithError.
type Observer interface {
	// Batch delivers displayable items of a single kind.
	Batch(items []models.Item)
	FinishEnumerating()
	FinishWithError(err error)
}

// Enumerator lists folders.
type Enumerator struct {
	src       Source
	proc      *Processor
	db        dbx.TxBeginner
	rootID    string
	batchSize int
	log       logging.Logger
}

// NewEnumerator builds an Enumerator. rootID is the real uuid of the root
// folder; db is used to write the two root rows atomically.
func NewEnumerator(src Source, proc *Processor, db dbx.TxBeginner, rootID string, log logging.Logger) *Enumerator {
	if log == nil {
		log = logging.Nop()
	}
	return &Enumerator{src: src, proc: proc, db: db, rootID: rootID, batchSize: BatchSize, log: log}
}

// ResolveID maps the root alias to the real root uuid.
func (e *Enumerator) ResolveID(containerID string) string {
	if containerID == models.RootContainerID && e.rootID != "" {
		return e.rootID
	}
	return containerID
}

// Enumerate lists containerID and reports to obs. Displayable items arrive
// in batches that never mix files and folders; when there are none, obs
// gets one empty batch. Source failures and failures writing the root rows
// end the enumeration with FinishWithError and are also returned; a record
// that cannot be stored is logged and skipped.
func (e *Enumerator) Enumerate(ctx context.Context, containerID string, obs Observer) error {
	sent := false
	err := e.enumerate(ctx, containerID, func(batch []models.Item) bool {
		sent = true
		obs.Batch(batch)
		return true
	})
	if err != nil {
		obs.FinishWithError(err)
		return err
	}
	if !sent {
		obs.Batch([]models.Item{})
	}
	obs.FinishEnumerating()
	return nil
}

// Items is a single-use sequence over the displayable items of containerID.
// A failure is yielded once as the last element.
func (e *Enumerator) Items(ctx context.Context, containerID string) iter.Seq2[models.Item, error] {
	return func(yield func(models.Item, error) bool) {
		stopped := false
		err := e.enumerate(ctx, containerID, func(batch []models.Item) bool {
			for _, it := range batch {
				if !yield(it, nil) {
					stopped = true
					return false
				}
			}
			return true
		})
		if err != nil && !stopped {
			yield(models.Item{}, err)
		}
	}
}

var errAbandoned = errors.New("enumeration abandoned")

func (e *Enumerator) enumerate(ctx context.Context, containerID string, emit func([]models.Item) bool) error {
	if err := e.upsertRoot(ctx); err != nil {
		return err
	}

	folderID := e.ResolveID(containerID)
	if folderID == models.RootContainerID {
		return fmt.Errorf("root folder uuid unknown: %w", common.ErrNotAuthenticated)
	}

	body, err := e.src.Open(ctx, folderID)
	if err != nil {
		return err
	}
	defer body.Close()

	b := batcher{size: e.batchSize, emit: emit}
	parser := NewParser(body, e.log)
	for {
		rec, err := parser.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		item, err := e.proc.Process(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Error(ctx, "failed to store listing record", "uuid", rec.id(), "err", err)
			continue
		}
		if !b.add(item) {
			return errAbandoned
		}
	}

	b.flush()
	return nil
}

// upsertRoot writes the real root row and its alias in one transaction, so
// the top level is addressable by either id.
func (e *Enumerator) upsertRoot(ctx context.Context) error {
	if e.rootID == "" {
		return nil
	}
	return dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := items.NewSQLiteRepository(tx)
		for _, id := range []string{e.rootID, models.RootContainerID} {
			root := models.Item{ID: id, ParentID: id, Name: models.RootDisplayName, Kind: models.KindFolder}
			if err := repo.Upsert(ctx, root); err != nil {
				return err
			}
		}
		return nil
	})
}

// batcher groups displayable items into single-kind batches.
type batcher struct {
	size int
	emit func([]models.Item) bool
	cur  []models.Item
}

// add queues item if it is displayable. It returns false once emit asked to
// stop.
func (b *batcher) add(item models.Item) bool {
	if !item.Displayable() {
		return true
	}
	if len(b.cur) > 0 && b.cur[0].Kind != item.Kind {
		if !b.flush() {
			return false
		}
	}
	b.cur = append(b.cur, item)
	if len(b.cur) >= b.size {
		return b.flush()
	}
	return true
}

func (b *batcher) flush() bool {
	if len(b.cur) == 0 {
		return true
	}
	batch := b.cur
	b.cur = nil
	return b.emit(batch)
}

// Package transfer is the chunked download engine. It reconstructs a remote
// file from its encrypted chunks on local storage, fetching chunks in
// parallel while appending them strictly in index order, and routes the
// result to its final destination.
//
// Concurrency is bounded by the process-wide gate.Set: whole-file downloads,
// chunk fetches and buffered (fetched but not yet written) chunks. At most
// one transfer per file id runs at a time.
package transfer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/drivesync/internal/client/chunks"
	"github.com/dmitrijs2005/drivesync/internal/client/events"
	"github.com/dmitrijs2005/drivesync/internal/client/fsys"
	"github.com/dmitrijs2005/drivesync/internal/client/gate"
	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/client/netstat"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/offline"
	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/logging"
)

const (
	DefaultSafetyBuffer = 256 << 20
	DefaultSettleDelay  = 5 * time.Second
)

// Deps are the collaborators of an Engine. Evictor and Media are optional;
// Offline is required only for DestinationOffline.
type Deps struct {
	Gates   *gate.Set
	Fetcher chunks.Fetcher
	FS      fsys.FileSystem
	Net     netstat.Status
	Evictor fsys.Evictor
	Offline offline.Repository
	Media   MediaLibrary
	Bus     *events.Bus
	Log     logging.Logger
}

// Options tune guards and destinations.
type Options struct {
	// WiFiOnly refuses downloads when the host is not on Wi-Fi.
	WiFiOnly bool
	// SafetyBuffer is the free space required on top of the file size.
	SafetyBuffer uint64
	// SettleDelay is how long to wait after eviction before rechecking free
	// space.
	SettleDelay time.Duration
	DownloadDir string
	OfflineDir  string
	// Now is a clock seam for tests.
	Now func() time.Time
}

// Request is one queued download.
type Request struct {
	File models.Item
	// MaxChunks limits reconstruction to the first chunks; 0 means all.
	MaxChunks   int
	Destination models.Destination
	// Notify asks for a human-readable Message on the done/err events.
	Notify bool
}

// Engine runs transfers. It is safe for concurrent use.
type Engine struct {
	deps Deps
	opts Options
	log  logging.Logger

	mu     sync.Mutex
	active map[string]*transfer
}

// New builds an Engine. Missing gates, bus or logger get defaults.
func New(deps Deps, opts Options) *Engine {
	if deps.Gates == nil {
		deps.Gates = gate.NewSet(gate.DefaultLimits())
	}
	if deps.Bus == nil {
		deps.Bus = events.NewBus()
	}
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	if deps.Net == nil {
		deps.Net = netstat.Static{IsOnline: true, IsWiFi: true}
	}
	if opts.SafetyBuffer == 0 {
		opts.SafetyBuffer = DefaultSafetyBuffer
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		deps:   deps,
		opts:   opts,
		log:    deps.Log.With("component", "transfer"),
		active: make(map[string]*transfer),
	}
}

// Bus is the bus the engine publishes on and listens to.
func (e *Engine) Bus() *events.Bus { return e.deps.Bus }

// Download reconstructs file into a temporary path and returns it. The
// caller owns the file. maxChunks <= 0 means all chunks.
func (e *Engine) Download(ctx context.Context, file models.Item, maxChunks int) (string, error) {
	return e.download(ctx, Request{File: file, MaxChunks: maxChunks, Destination: models.DestinationRaw})
}

// Queue downloads req.File, routes it to req.Destination and publishes the
// lifecycle events. It returns the final path.
func (e *Engine) Queue(ctx context.Context, req Request) (string, error) {
	e.publish(req, models.Event{Kind: models.EventDownloadStart})

	var (
		path string
		err  error
	)
	if p, ok := e.galleryFromOffline(ctx, req); ok {
		path, err = p, nil
	} else {
		path, err = e.download(ctx, req)
		if err == nil {
			tmp := path
			if path, err = e.route(ctx, req, tmp); err != nil {
				_ = e.deps.FS.Unlink(tmp)
			}
		}
	}

	if err != nil {
		if !isStopped(err) {
			e.publish(req, models.Event{Kind: models.EventDownloadErr, Err: err})
		}
		return "", err
	}

	e.publish(req, models.Event{Kind: models.EventDownloadDone, Path: path})
	return path, nil
}

// Pause holds back chunks of id that have not been dispatched yet.
func (e *Engine) Pause(id string) error {
	return e.control(id, models.EventPauseTransfer)
}

// Resume undoes Pause.
func (e *Engine) Resume(id string) error {
	return e.control(id, models.EventResumeTransfer)
}

// Stop aborts the transfer of id. Fetches already in flight finish, but their
// results are discarded and Download returns common.ErrStopped.
func (e *Engine) Stop(id string) error {
	return e.control(id, models.EventStopTransfer)
}

func (e *Engine) control(id string, kind models.EventKind) error {
	e.mu.Lock()
	_, ok := e.active[id]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("transfer %s: %w", id, common.ErrNotFound)
	}

	e.deps.Bus.Publish(models.Event{Kind: kind, FileID: id})
	return nil
}

// Transfers returns snapshots of the active transfers ordered by file id.
func (e *Engine) Transfers() []models.TransferTask {
	e.mu.Lock()
	list := make([]*transfer, 0, len(e.active))
	for _, t := range e.active {
		list = append(list, t)
	}
	e.mu.Unlock()

	out := make([]models.TransferTask, 0, len(list))
	for _, t := range list {
		out = append(out, t.snapshot())
	}
	slices.SortFunc(out, func(a, b models.TransferTask) int { return strings.Compare(a.FileID, b.FileID) })
	return out
}

// admit registers a transfer for req.File. The check and insert happen under
// the admission gate.
func (e *Engine) admit(ctx context.Context, req Request, chunkCount int) (*transfer, error) {
	if err := e.deps.Gates.Admission.Acquire(ctx); err != nil {
		return nil, err
	}
	defer e.deps.Gates.Admission.Release()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.active[req.File.ID]; ok {
		return nil, fmt.Errorf("%w: %s", common.ErrAlreadyInProgress, req.File.ID)
	}

	t := newTransfer(ctx, req, chunkCount)
	t.unsubscribe = e.deps.Bus.Subscribe(t.handle,
		models.EventPauseTransfer, models.EventResumeTransfer, models.EventStopTransfer)
	e.active[t.id] = t
	return t, nil
}

func (e *Engine) forget(t *transfer) {
	t.unsubscribe()
	t.cancel(nil)

	e.mu.Lock()
	delete(e.active, t.id)
	e.mu.Unlock()
}

func (e *Engine) download(ctx context.Context, req Request) (path string, err error) {
	n := chunkCount(req)
	if n == 0 {
		return "", fmt.Errorf("%w: %s has no chunks", common.ErrFetchFailed, req.File.ID)
	}

	t, err := e.admit(ctx, req, n)
	if err != nil {
		return "", err
	}
	defer e.forget(t)
	defer func() { t.finish(err) }()

	log := e.log.With("uuid", t.id, "destination", req.Destination.String())

	if err := e.checkGuards(t.ctx, req.File); err != nil {
		log.Warn(ctx, "download refused", "err", err)
		return "", err
	}

	if req.Destination != models.DestinationPreview {
		if err := e.deps.Gates.Download.Acquire(t.ctx); err != nil {
			return "", cause(t.ctx, err)
		}
		defer e.deps.Gates.Download.Release()
	}

	e.publish(req, models.Event{Kind: models.EventDownloadStarted})
	log.Info(ctx, "download started", "chunks", n, "size", req.File.Size)

	path, err = e.reconstruct(ctx, t)
	if err != nil {
		log.Warn(ctx, "download failed", "err", err)
		return "", err
	}

	log.Info(ctx, "download finished")
	return path, nil
}

func chunkCount(req Request) int {
	n := req.File.ChunkCount
	if req.MaxChunks > 0 && (n == 0 || req.MaxChunks < n) {
		n = req.MaxChunks
	}
	return n
}

func (e *Engine) publish(req Request, ev models.Event) {
	ev.FileID = req.File.ID
	ev.Destination = req.Destination
	if req.Notify {
		ev.Message = message(req, ev)
	}
	e.deps.Bus.Publish(ev)
}

func message(req Request, ev models.Event) string {
	name := req.File.Name
	switch ev.Kind {
	case models.EventDownloadStart:
		return fmt.Sprintf("Queued %s", name)
	case models.EventDownloadStarted:
		return fmt.Sprintf("Downloading %s", name)
	case models.EventDownloadDone:
		if req.Destination == models.DestinationOffline {
			return fmt.Sprintf("%s is now available offline", name)
		}
		return fmt.Sprintf("%s downloaded", name)
	case models.EventDownloadErr:
		return fmt.Sprintf("Could not download %s: %v", name, ev.Err)
	default:
		return ""
	}
}

package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/common"
)

// checkGuards runs the pre-flight checks that follow registration:
// reachability, Wi-Fi policy, then free space.
func (e *Engine) checkGuards(ctx context.Context, file models.Item) error {
	if !e.deps.Net.Online() {
		return common.ErrOffline
	}
	if e.opts.WiFiOnly && !e.deps.Net.OnWiFi() {
		return common.ErrPolicyViolation
	}
	return e.ensureSpace(ctx, file)
}

// ensureSpace requires file.Size plus the safety buffer to be free in the
// cache directory. On shortfall it evicts derived caches, waits the settle
// delay and checks once more.
func (e *Engine) ensureSpace(ctx context.Context, file models.Item) error {
	need := uint64(max(file.Size, 0)) + e.opts.SafetyBuffer
	dir := e.deps.FS.CacheDirectory()

	free, err := e.deps.FS.FreeSpace(dir)
	if err != nil {
		e.log.Warn(ctx, "free space unknown, skipping check", "dir", dir, "err", err)
		return nil
	}
	if free >= need {
		return nil
	}

	e.log.Info(ctx, "low on space, evicting caches", "uuid", file.ID, "free", free, "need", need)
	if e.deps.Evictor != nil {
		if err := e.deps.Evictor.Evict(ctx); err != nil {
			e.log.Warn(ctx, "cache eviction failed", "err", err)
		}
	}

	timer := time.NewTimer(e.opts.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return context.Cause(ctx)
	}

	free, err = e.deps.FS.FreeSpace(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrOutOfStorage, err)
	}
	if free < need {
		return fmt.Errorf("%w: %d bytes free, %d needed", common.ErrOutOfStorage, free, need)
	}
	return nil
}

package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/drivesync/internal/client/fsys"
	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/offline"
	"github.com/dmitrijs2005/drivesync/internal/common"
)

// MediaLibrary is a user-visible media collection (a photo gallery, a
// shared folder). Import copies src into the library and returns where it
// landed; the caller keeps src.
type MediaLibrary interface {
	Import(ctx context.Context, src string, file models.Item) (string, error)
}

// DirLibrary is a MediaLibrary backed by a plain directory.
type DirLibrary struct {
	Dir string
	FS  fsys.FileSystem
}

func (l DirLibrary) Import(_ context.Context, src string, file models.Item) (string, error) {
	dst := filepath.Join(l.Dir, fileName(file))
	if err := l.FS.Copy(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// fileName is the local name for file: its base name, or its id when the
// name is unusable.
func fileName(file models.Item) string {
	name := filepath.Base(strings.ReplaceAll(file.Name, `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return file.ID
	}
	return name
}

// OfflinePath is where file lives once stored offline.
func (e *Engine) OfflinePath(file models.Item) string {
	return filepath.Join(e.opts.OfflineDir, file.ID)
}

// route moves a reconstructed file from tmp to its destination.
func (e *Engine) route(ctx context.Context, req Request, tmp string) (string, error) {
	switch req.Destination {
	case models.DestinationRaw, models.DestinationPreview:
		return tmp, nil

	case models.DestinationOffline:
		return e.storeOffline(ctx, req.File, tmp)

	case models.DestinationGallery:
		if e.deps.Media == nil {
			return tmp, nil
		}
		return e.importMedia(ctx, req.File, tmp)

	default:
		if e.deps.Media != nil {
			return e.importMedia(ctx, req.File, tmp)
		}
		dst := filepath.Join(e.opts.DownloadDir, fileName(req.File))
		if err := e.replace(tmp, dst); err != nil {
			return "", err
		}
		return dst, nil
	}
}

func (e *Engine) replace(src, dst string) error {
	if err := e.deps.FS.Unlink(dst); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDestinationConflict, err)
	}
	if err := e.deps.FS.Move(src, dst); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDestinationConflict, err)
	}
	return nil
}

func (e *Engine) storeOffline(ctx context.Context, file models.Item, tmp string) (string, error) {
	if e.deps.Offline == nil {
		return "", fmt.Errorf("%w: offline storage is not configured", common.ErrDestinationConflict)
	}

	dst := e.OfflinePath(file)
	if err := e.replace(tmp, dst); err != nil {
		return "", err
	}

	entry := offline.Entry{FileID: file.ID, Path: dst, Size: file.Size, StoredAt: e.opts.Now().UTC()}
	if err := e.deps.Offline.Add(ctx, entry); err != nil {
		_ = e.deps.FS.Unlink(dst)
		return "", err
	}

	e.deps.Bus.Publish(models.Event{Kind: models.EventMarkOffline, FileID: file.ID, Path: dst})
	return dst, nil
}

func (e *Engine) importMedia(ctx context.Context, file models.Item, tmp string) (string, error) {
	dst, err := e.deps.Media.Import(ctx, tmp, file)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrDestinationConflict, err)
	}
	_ = e.deps.FS.Unlink(tmp)
	return dst, nil
}

// galleryFromOffline serves a gallery export from offline storage when the
// file is already there, without fetching anything.
func (e *Engine) galleryFromOffline(ctx context.Context, req Request) (string, bool) {
	if req.Destination != models.DestinationGallery || e.deps.Offline == nil {
		return "", false
	}

	entry, err := e.deps.Offline.Get(ctx, req.File.ID)
	if err != nil || !e.deps.FS.Exists(entry.Path) {
		return "", false
	}

	if e.deps.Media == nil {
		return entry.Path, true
	}
	dst, err := e.deps.Media.Import(ctx, entry.Path, req.File)
	if err != nil {
		e.log.Warn(ctx, "gallery import from offline copy failed", "uuid", req.File.ID, "err", err)
		return "", false
	}
	return dst, true
}

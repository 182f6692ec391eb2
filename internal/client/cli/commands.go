package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/client/transfer"
	"github.com/dmitrijs2005/drivesync/internal/common"
)

var errUsage = errors.New("usage")

func usage(text string) error {
	printlnFn("Usage:", text)
	return errUsage
}

func (a *App) fail(err error) error {
	printlnFn("error:", err)
	return err
}

// List prints the contents of the current folder, or of the folder given as
// the first argument. When the gateway cannot be reached the cached listing
// is shown instead.
func (a *App) List(ctx context.Context, args []string) error {
	container := a.cwd
	if len(args) > 0 {
		container = args[0]
	}

	var listErr error
	n := 0
	for item, err := range a.lister.Items(ctx, container) {
		if err != nil {
			listErr = err
			break
		}
		printItem(item)
		n++
	}

	if listErr == nil {
		if n == 0 {
			printlnFn("(empty)")
		}
		return nil
	}
	if n > 0 || errors.Is(listErr, common.ErrNotAuthenticated) {
		return a.fail(listErr)
	}

	a.log.Warn(ctx, "listing failed, showing cached items", "container", container, "err", listErr)
	cached, err := a.items.ListByParent(ctx, a.lister.ResolveID(container))
	if err != nil {
		return a.fail(err)
	}
	printlnFn("(cached)")
	for _, item := range cached {
		printItem(item)
	}
	return nil
}

func printItem(item models.Item) {
	color := ""
	if item.Color != "" {
		color = " [" + item.Color + "]"
	}
	if item.IsFolder() {
		printlnFn(fmt.Sprintf("d %-36s %s/%s", item.ID, item.Name, color))
		return
	}
	printlnFn(fmt.Sprintf("- %-36s %s (%d bytes)%s", item.ID, item.Name, item.Size, color))
}

// Cd changes the current folder. "/" goes to the top level and ".." one
// level up; anything else is a folder id or a folder name in the current
// folder.
func (a *App) Cd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("cd <folder>|..|/")
	}

	switch args[0] {
	case "/":
		a.cwd, a.trail = models.RootContainerID, nil
		return nil
	case "..":
		if len(a.trail) == 0 {
			return nil
		}
		cur, err := a.items.GetByID(ctx, a.lister.ResolveID(a.cwd))
		if err != nil {
			return a.fail(err)
		}
		a.cwd = cur.ParentID
		a.trail = a.trail[:len(a.trail)-1]
		if len(a.trail) == 0 {
			a.cwd = models.RootContainerID
		}
		return nil
	}

	item, err := a.resolveItem(ctx, strings.Join(args, " "))
	if err != nil {
		return a.fail(err)
	}
	if !item.IsFolder() {
		return a.fail(fmt.Errorf("%s is not a folder", item.Name))
	}
	a.cwd = item.ID
	a.trail = append(a.trail, item.Name)
	return nil
}

// resolveItem finds an item by id, or by exact name among the children of
// the current folder.
func (a *App) resolveItem(ctx context.Context, ref string) (models.Item, error) {
	item, err := a.items.GetByID(ctx, ref)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return models.Item{}, err
	}

	children, err := a.items.ListByParent(ctx, a.lister.ResolveID(a.cwd))
	if err != nil {
		return models.Item{}, err
	}
	for _, c := range children {
		if c.Name == ref {
			return c, nil
		}
	}
	return models.Item{}, fmt.Errorf("%q: %w", ref, common.ErrNotFound)
}

func (a *App) resolveFile(ctx context.Context, args []string, cmd string) (models.Item, error) {
	if len(args) == 0 {
		return models.Item{}, usage(cmd + " <file>")
	}
	item, err := a.resolveItem(ctx, strings.Join(args, " "))
	if err != nil {
		return models.Item{}, a.fail(err)
	}
	if item.IsFolder() {
		return models.Item{}, a.fail(fmt.Errorf("%s is a folder", item.Name))
	}
	return item, nil
}

// startTransfer queues a download in the background. Progress is reported
// through the event bus.
func (a *App) startTransfer(ctx context.Context, item models.Item, dest models.Destination) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		req := transfer.Request{File: item, Destination: dest, Notify: true}
		if _, err := a.engine.Queue(ctx, req); err != nil {
			a.log.Debug(ctx, "transfer ended", "uuid", item.ID, "destination", dest.String(), "err", err)
		}
	}()
}

// Get downloads a file into the downloads directory.
func (a *App) Get(ctx context.Context, args []string) error {
	item, err := a.resolveFile(ctx, args, "get")
	if err != nil {
		return err
	}
	a.startTransfer(ctx, item, models.DestinationDownload)
	return nil
}

// Offline downloads a file into offline storage.
func (a *App) Offline(ctx context.Context, args []string) error {
	item, err := a.resolveFile(ctx, args, "offline")
	if err != nil {
		return err
	}
	a.startTransfer(ctx, item, models.DestinationOffline)
	return nil
}

// Gallery exports a file, reusing the offline copy when there is one.
func (a *App) Gallery(ctx context.Context, args []string) error {
	item, err := a.resolveFile(ctx, args, "gallery")
	if err != nil {
		return err
	}
	a.startTransfer(ctx, item, models.DestinationGallery)
	return nil
}

// Preview reconstructs the first chunks of a file (all of them when no
// count is given) and prints the temporary path. It blocks until done.
func (a *App) Preview(ctx context.Context, args []string) error {
	maxChunks := 0
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			maxChunks = n
			args = args[:len(args)-1]
		}
	}

	item, err := a.resolveFile(ctx, args, "preview")
	if err != nil {
		return err
	}

	path, err := a.engine.Queue(ctx, transfer.Request{
		File:        item,
		MaxChunks:   maxChunks,
		Destination: models.DestinationPreview,
	})
	if err != nil {
		return a.fail(err)
	}
	printlnFn(path)
	return nil
}

func (a *App) control(args []string, cmd string, fn func(id string) error) error {
	if len(args) == 0 {
		return usage(cmd + " <file id>")
	}
	if err := fn(args[0]); err != nil {
		return a.fail(err)
	}
	return nil
}

// Pause holds back the remaining chunks of a transfer.
func (a *App) Pause(_ context.Context, args []string) error {
	return a.control(args, "pause", a.engine.Pause)
}

// Resume continues a paused transfer.
func (a *App) Resume(_ context.Context, args []string) error {
	return a.control(args, "resume", a.engine.Resume)
}

// Stop aborts a transfer.
func (a *App) Stop(_ context.Context, args []string) error {
	return a.control(args, "stop", a.engine.Stop)
}

// Transfers prints the active transfers.
func (a *App) Transfers(_ context.Context, _ []string) error {
	list := a.engine.Transfers()
	if len(list) == 0 {
		printlnFn("no active transfers")
		return nil
	}
	for _, t := range list {
		printlnFn(fmt.Sprintf("%-36s %-8s %-8s %d/%d %s",
			t.FileID, t.Destination, t.State, t.NextWriteIndex, t.ChunkCount, t.Name))
	}
	return nil
}

// Color sets or clears (with no color argument) the color tag of an item.
func (a *App) Color(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("color <item id> [color]")
	}
	id, color := args[0], ""
	if len(args) > 1 {
		color = args[1]
	}

	if err := a.items.SetColor(ctx, id, color); err != nil {
		return a.fail(err)
	}
	a.bus.Publish(models.Event{Kind: models.EventColorChanged, FileID: id, Color: color})
	return nil
}

// Offlines prints the files kept in offline storage.
func (a *App) Offlines(ctx context.Context, _ []string) error {
	entries, err := a.offline.List(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(entries) == 0 {
		printlnFn("no offline files")
		return nil
	}
	for _, e := range entries {
		printlnFn(fmt.Sprintf("%-36s %10d %s %s", e.FileID, e.Size, e.StoredAt.Local().Format("2006-01-02 15:04"), e.Path))
	}
	return nil
}

// Forget removes a file from offline storage after confirmation.
func (a *App) Forget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("forget <file id>")
	}

	entry, err := a.offline.Get(ctx, args[0])
	if err != nil {
		return a.fail(err)
	}
	if !confirm(a.reader, fmt.Sprintf("Remove offline copy %s?", entry.Path), os.Stdout) {
		return nil
	}

	if err := a.offline.Remove(ctx, entry.FileID); err != nil {
		return a.fail(err)
	}
	if err := a.fs.Unlink(entry.Path); err != nil {
		return a.fail(err)
	}
	printlnFn("removed", entry.Path)
	return nil
}

// Status prints connectivity.
func (a *App) Status(_ context.Context, _ []string) error {
	wifi := "no"
	if a.net.OnWiFi() {
		wifi = "yes"
	}
	printlnFn(fmt.Sprintf("mode: %s, wi-fi: %s, wifi-only: %t", a.mode(), wifi, a.config.WiFiOnly))
	return nil
}

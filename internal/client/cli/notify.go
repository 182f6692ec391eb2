package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
)

// watchEvents prints transfer outcomes and cache changes until ctx is done.
func (a *App) watchEvents(ctx context.Context) {
	ch, unsubscribe := a.bus.Channel(64,
		models.EventDownloadDone,
		models.EventDownloadErr,
		models.EventColorChanged,
	)
	defer unsubscribe()

	for {
		select {
		case ev := <-ch:
			if text := describe(ev); text != "" {
				printlnFn(text)
			}
		case <-ctx.Done():
			if n := a.bus.Dropped(); n > 0 {
				a.log.Warn(ctx, "notifications dropped", "count", n)
			}
			return
		}
	}
}

// describe renders ev for the terminal. Preview results are printed by the
// command itself.
func describe(ev models.Event) string {
	switch ev.Kind {
	case models.EventDownloadDone:
		if ev.Destination == models.DestinationPreview {
			return ""
		}
		if ev.Message != "" {
			return fmt.Sprintf("%s: %s", ev.Message, ev.Path)
		}
		return fmt.Sprintf("%s downloaded: %s", ev.FileID, ev.Path)
	case models.EventDownloadErr:
		if ev.Message != "" {
			return ev.Message
		}
		return fmt.Sprintf("download of %s failed: %v", ev.FileID, ev.Err)
	case models.EventColorChanged:
		if ev.Color == "" {
			return fmt.Sprintf("%s: color cleared", ev.FileID)
		}
		return fmt.Sprintf("%s: color set to %s", ev.FileID, ev.Color)
	default:
		return ""
	}
}

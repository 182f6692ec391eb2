package models

// EventKind names a notification published on the event bus.
type EventKind string

const (
	// Download lifecycle.
	EventDownloadStart   EventKind = "download.start"
	EventDownloadStarted EventKind = "download.started"
	EventDownloadDone    EventKind = "download.done"
	EventDownloadErr     EventKind = "download.err"

	// Transfer control, consumed by the engine.
	EventPauseTransfer  EventKind = "transfer.pause"
	EventResumeTransfer EventKind = "transfer.resume"
	EventStopTransfer   EventKind = "transfer.stop"

	// Cache changes.
	EventMarkOffline  EventKind = "item.markOffline"
	EventColorChanged EventKind = "item.colorChanged"
)

// Event is one bus notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind        EventKind
	FileID      string
	Destination Destination
	// Path is the final location of a finished download.
	Path string
	// Message is a human-readable summary, set when the request asked for
	// notifications.
	Message string
	Err     error
	// Color is set for EventColorChanged.
	Color string
}

package models

// Destination is what happens to a file once it has been reconstructed.
type Destination int

const (
	// DestinationRaw leaves the file at its temporary reconstruction path.
	DestinationRaw Destination = iota
	// DestinationDownload places the file in the downloads directory or the
	// media library.
	DestinationDownload
	// DestinationOffline moves the file into offline storage.
	DestinationOffline
	// DestinationGallery hands the file to the media library.
	DestinationGallery
	// DestinationPreview returns the temporary path for immediate viewing and
	// bypasses the download gate.
	DestinationPreview
)

func (d Destination) String() string {
	switch d {
	case DestinationRaw:
		return "raw"
	case DestinationDownload:
		return "download"
	case DestinationOffline:
		return "offline"
	case DestinationGallery:
		return "gallery"
	case DestinationPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// TransferState is the lifecycle state of one transfer.
type TransferState int

const (
	TransferActive TransferState = iota
	TransferPaused
	TransferStopped
	TransferDone
	TransferFailed
)

func (s TransferState) String() string {
	switch s {
	case TransferActive:
		return "active"
	case TransferPaused:
		return "paused"
	case TransferStopped:
		return "stopped"
	case TransferDone:
		return "done"
	case TransferFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s TransferState) Terminal() bool {
	return s == TransferStopped || s == TransferDone || s == TransferFailed
}

// TransferTask is a point-in-time snapshot of an in-progress transfer.
type TransferTask struct {
	FileID      string
	Name        string
	Destination Destination
	ChunkCount  int
	// NextWriteIndex is the next chunk index the writer will apply.
	NextWriteIndex int
	Paused         bool
	Stopped        bool
	State          TransferState
}

package metacache

import (
	"context"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
)

// Repository stores decrypted file and folder metadata. Get methods return
// ok=false on a miss.
type Repository interface {
	GetFile(ctx context.Context, blob string) (md models.FileMetadata, ok bool, err error)
	PutFile(ctx context.Context, blob string, md models.FileMetadata) error
	GetFolder(ctx context.Context, blob string) (name string, ok bool, err error)
	PutFolder(ctx context.Context, blob string, name string) error
}

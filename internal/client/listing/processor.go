package listing

import (
	"context"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/items"
	"github.com/dmitrijs2005/drivesync/internal/client/repositories/metacache"
	"github.com/dmitrijs2005/drivesync/internal/logging"
)

// Decrypter opens metadata blobs. Failures are reported as ok=false.
type Decrypter interface {
	DecryptFolderName(blob string) (string, bool)
	DecryptFileMetadata(blob string) (models.FileMetadata, bool)
}

// Processor turns raw records into cached items. Decrypted metadata is
// memoized by blob so unchanged items are never decrypted twice.
type Processor struct {
	crypto Decrypter
	cache  metacache.Repository
	items  items.Repository
	log    logging.Logger
}

func NewProcessor(crypto Decrypter, cache metacache.Repository, items items.Repository, log logging.Logger) *Processor {
	if log == nil {
		log = logging.Nop()
	}
	return &Processor{crypto: crypto, cache: cache, items: items, log: log}
}

// Process decrypts rec, upserts the resulting item and returns it. The item
// is stored even when decryption fails; its Name is then empty. Only store
// errors are returned.
func (p *Processor) Process(ctx context.Context, rec Record) (models.Item, error) {
	var (
		item models.Item
		err  error
	)
	switch {
	case rec.File != nil:
		item, err = p.file(ctx, rec.File)
	case rec.Folder != nil:
		item, err = p.folder(ctx, rec.Folder)
	default:
		return models.Item{}, nil
	}
	if err != nil {
		return models.Item{}, err
	}

	if err := p.items.Upsert(ctx, item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

func (p *Processor) file(ctx context.Context, f *FileRecord) (models.Item, error) {
	item := models.Item{
		ID:         f.UUID,
		ParentID:   f.Parent,
		Kind:       models.KindFile,
		Size:       f.Size,
		CreatedAt:  models.NormalizeTimestamp(f.Timestamp),
		ChunkCount: f.Chunks,
		Region:     f.Region,
		Bucket:     f.Bucket,
		Version:    f.Version,
	}
	item.ModifiedAt = item.CreatedAt

	md, ok, err := p.cache.GetFile(ctx, f.Metadata)
	if err != nil {
		return models.Item{}, err
	}
	if !ok {
		md, ok = p.crypto.DecryptFileMetadata(f.Metadata)
		if !ok {
			p.log.Debug(ctx, "file metadata not decryptable", "uuid", f.UUID)
			return item, nil
		}
		if err := p.cache.PutFile(ctx, f.Metadata, md); err != nil {
			return models.Item{}, err
		}
	}

	item.Name = md.Name
	item.Mime = md.Mime
	item.Key = md.Key
	if md.Size > 0 {
		item.Size = md.Size
	}
	if md.LastModified > 0 {
		item.ModifiedAt = models.NormalizeTimestamp(md.LastModified)
	}
	return item, nil
}

func (p *Processor) folder(ctx context.Context, f *FolderRecord) (models.Item, error) {
	item := models.Item{
		ID:         f.UUID,
		ParentID:   f.Parent,
		Kind:       models.KindFolder,
		CreatedAt:  models.NormalizeTimestamp(f.Timestamp),
		ModifiedAt: models.NormalizeTimestamp(f.Timestamp),
		Color:      f.Color,
	}

	name, ok, err := p.cache.GetFolder(ctx, f.Name)
	if err != nil {
		return models.Item{}, err
	}
	if !ok {
		name, ok = p.crypto.DecryptFolderName(f.Name)
		if !ok {
			p.log.Debug(ctx, "folder name not decryptable", "uuid", f.UUID)
			return item, nil
		}
		if err := p.cache.PutFolder(ctx, f.Name, name); err != nil {
			return models.Item{}, err
		}
	}

	item.Name = name
	return item, nil
}

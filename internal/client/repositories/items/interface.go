package items

import (
	"context"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
)

// Repository persists items of the sync cache.
type Repository interface {
	// Upsert inserts the item or replaces the row with the same uuid.
	Upsert(ctx context.Context, item models.Item) error

	// GetByID returns the item or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (models.Item, error)

	// ListByParent returns the displayable children of parentID, folders
	// first, then by name.
	ListByParent(ctx context.Context, parentID string) ([]models.Item, error)

	// SetColor updates the color tag of an item.
	SetColor(ctx context.Context, id, color string) error

	// DeleteByID removes the item; missing rows are not an error.
	DeleteByID(ctx context.Context, id string) error
}

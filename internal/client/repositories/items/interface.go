package items

import (
	"context"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

// Repository describes the persistence operations on retained items.
type Repository interface {
	// Upsert inserts the item or fully replaces the stored record with the
	// same (OwnerID, ID).
	Upsert(ctx context.Context, item *models.Item) error

	// Get returns common.ErrNotFound when the key is absent.
	Get(ctx context.Context, ownerID, itemID string) (*models.Item, error)

	// Delete removes a record; deleting an absent key is not an error.
	Delete(ctx context.Context, ownerID, itemID string) error

	// ListByOwner returns the owner's items, most recently downloaded first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Item, error)

	// ListAll returns every item, most recently downloaded first.
	ListAll(ctx context.Context) ([]models.Item, error)

	Count(ctx context.Context) (int, error)

	// SetRead updates the read flag and reports whether a record matched.
	SetRead(ctx context.Context, ownerID, itemID string, isRead bool) (bool, error)

	Clear(ctx context.Context) error
}

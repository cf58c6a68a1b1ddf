// Package positions stores one reading position per item id. Positions live
// outside the local store's item transactions and are overwritten in place.
package positions

import (
	"context"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

type Repository interface {
	Save(ctx context.Context, p *models.Position) error
	// Get returns common.ErrNotFound when nothing was saved for itemID.
	Get(ctx context.Context, itemID string) (*models.Position, error)
	Delete(ctx context.Context, itemID string) error
}

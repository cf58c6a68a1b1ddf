// Package owners persists the last fetched owner directory so it can be
// listed while the backing service is unreachable.
package owners

import (
	"context"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

type Repository interface {
	// Upsert stores the summary keyed by slug, replacing any previous copy.
	Upsert(ctx context.Context, o *models.OwnerSummary, updatedAt time.Time) error
	// List returns all summaries ordered by name.
	List(ctx context.Context) ([]models.OwnerSummary, error)
	Clear(ctx context.Context) error
}

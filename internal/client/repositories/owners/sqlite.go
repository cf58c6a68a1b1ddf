package owners

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, o *models.OwnerSummary, updatedAt time.Time) error {
	query := `INSERT INTO owners (slug, name, item_count, unread_count, latest_item, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET
				name = excluded.name,
				item_count = excluded.item_count,
				unread_count = excluded.unread_count,
				latest_item = excluded.latest_item,
				updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, o.Slug, o.Name, o.ItemCount, o.UnreadCount, o.LatestItem, updatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert owner %s: %w", o.Slug, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.OwnerSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slug, name, item_count, unread_count, latest_item FROM owners ORDER BY name, slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to select owners: %w", err)
	}
	defer rows.Close()

	result := make([]models.OwnerSummary, 0)
	for rows.Next() {
		var o models.OwnerSummary
		if err := rows.Scan(&o.Slug, &o.Name, &o.ItemCount, &o.UnreadCount, &o.LatestItem); err != nil {
			return nil, fmt.Errorf("failed to scan owner row: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owner rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM owners`); err != nil {
		return fmt.Errorf("failed to clear owners: %w", err)
	}
	return nil
}

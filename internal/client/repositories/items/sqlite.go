package items

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/dbx"
)

const selectColumns = `owner_id, item_id, title, body, url, published_date, is_read,
	prev_item_id, next_item_id, downloaded_at`

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, it *models.Item) error {
	query := `INSERT INTO items (owner_id, item_id, title, body, url, published_date, is_read,
				prev_item_id, next_item_id, downloaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, item_id) DO UPDATE SET
				title = excluded.title,
				body = excluded.body,
				url = excluded.url,
				published_date = excluded.published_date,
				is_read = excluded.is_read,
				prev_item_id = excluded.prev_item_id,
				next_item_id = excluded.next_item_id,
				downloaded_at = excluded.downloaded_at
	`
	_, err := r.db.ExecContext(ctx, query,
		it.OwnerID, it.ID, it.Title, it.Body, it.URL, it.PublishedDate, it.IsRead,
		it.PrevItemID, it.NextItemID, it.DownloadedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert item %s/%s: %w", it.OwnerID, it.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, ownerID, itemID string) (*models.Item, error) {
	query := `SELECT ` + selectColumns + ` FROM items WHERE owner_id = ? AND item_id = ?`
	row := r.db.QueryRowContext(ctx, query, ownerID, itemID)

	it, err := scanItem(row)
	if dbx.IsNoRows(err) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s/%s: %w", ownerID, itemID, err)
	}
	return it, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, ownerID, itemID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE owner_id = ? AND item_id = ?`, ownerID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item %s/%s: %w", ownerID, itemID, err)
	}
	return nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Item, error) {
	query := `SELECT ` + selectColumns + ` FROM items WHERE owner_id = ?
		ORDER BY downloaded_at DESC, item_id`
	return r.list(ctx, query, ownerID)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	query := `SELECT ` + selectColumns + ` FROM items ORDER BY downloaded_at DESC, owner_id, item_id`
	return r.list(ctx, query)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) SetRead(ctx context.Context, ownerID, itemID string, isRead bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET is_read = ? WHERE owner_id = ? AND item_id = ?`,
		isRead, ownerID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to set read flag on %s/%s: %w", ownerID, itemID, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	result := make([]models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.Item, error) {
	var (
		it           models.Item
		downloadedAt int64
	)
	err := s.Scan(&it.OwnerID, &it.ID, &it.Title, &it.Body, &it.URL, &it.PublishedDate, &it.IsRead,
		&it.PrevItemID, &it.NextItemID, &downloadedAt)
	if err != nil {
		return nil, err
	}
	it.DownloadedAt = time.Unix(0, downloadedAt).UTC()
	return &it, nil
}

package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, cacheName string, resp *models.CachedResponse) error {
	h := resp.Header
	if h == nil {
		h = http.Header{}
	}
	header, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	body := resp.Body
	if body == nil {
		body = []byte{}
	}

	query := `INSERT INTO cache_entries (cache_name, cache_key, url, status, header, body, stored_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(cache_name, cache_key) DO UPDATE SET
				url = excluded.url,
				status = excluded.status,
				header = excluded.header,
				body = excluded.body,
				stored_at = excluded.stored_at
	`
	_, err = r.db.ExecContext(ctx, query, cacheName, resp.Key, resp.URL, resp.Status, header, body, resp.StoredAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to put %s into %s: %w", resp.URL, cacheName, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, cacheName, key string) (*models.CachedResponse, error) {
	query := `SELECT url, status, header, body, stored_at FROM cache_entries WHERE cache_name = ? AND cache_key = ?`

	var (
		resp     = models.CachedResponse{Key: key}
		header   []byte
		storedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, cacheName, key).Scan(&resp.URL, &resp.Status, &header, &resp.Body, &storedAt)
	if dbx.IsNoRows(err) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from %s: %w", key, cacheName, err)
	}

	resp.Header = http.Header{}
	if len(header) > 0 {
		if err := json.Unmarshal(header, &resp.Header); err != nil {
			return nil, fmt.Errorf("failed to decode header of %s: %w", resp.URL, err)
		}
	}
	resp.StoredAt = time.Unix(0, storedAt).UTC()
	return &resp, nil
}

func (r *SQLiteRepository) CacheNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT cache_name FROM cache_entries ORDER BY cache_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan cache name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate caches: %w", err)
	}
	return names, nil
}

func (r *SQLiteRepository) DeleteCache(ctx context.Context, cacheName string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_name = ?`, cacheName)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache %s: %w", cacheName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, cacheName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries WHERE cache_name = ?`, cacheName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache %s: %w", cacheName, err)
	}
	return n, nil
}

package cachestore

import (
	"context"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

// Repository describes operations on named response caches.
type Repository interface {
	// Put stores resp under (cacheName, resp.Key), replacing any previous entry.
	Put(ctx context.Context, cacheName string, resp *models.CachedResponse) error

	// Get returns common.ErrNotFound on a miss.
	Get(ctx context.Context, cacheName, key string) (*models.CachedResponse, error)

	// CacheNames lists the caches holding at least one entry.
	CacheNames(ctx context.Context) ([]string, error)

	// DeleteCache drops a whole cache and returns the number of removed entries.
	DeleteCache(ctx context.Context, cacheName string) (int64, error)

	Count(ctx context.Context, cacheName string) (int, error)
}

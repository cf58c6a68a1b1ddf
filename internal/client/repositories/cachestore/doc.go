// Package cachestore keeps HTTP responses in named, versioned caches.
//
// A cache is identified by its name (for example "readkeeper-static-v2");
// entries inside a cache are keyed by a request digest computed by the
// caller. Whole caches are dropped at once when a new version activates.
//
//	repo := cachestore.NewSQLiteRepository(db)
//	_ = repo.Put(ctx, "readkeeper-static-v2", resp)
//	r, err := repo.Get(ctx, "readkeeper-static-v2", key) // common.ErrNotFound on miss
//	names, _ := repo.CacheNames(ctx)
package cachestore

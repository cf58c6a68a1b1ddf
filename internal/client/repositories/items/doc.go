// Package items persists downloaded content units of the local store.
//
// Records are keyed by (owner_id, item_id); writes are upserts that replace
// the whole payload. Secondary indexes on owner and download time back the
// per-owner listing and the download-order scans.
//
//	repo := items.NewSQLiteRepository(tx)
//	_ = repo.Upsert(ctx, item)
//	it, err := repo.Get(ctx, "lunadea", "a3") // common.ErrNotFound if absent
//
// Repositories are bound to a dbx.DBTX, so the same code runs against *sql.DB
// or inside a transaction opened by dbx.WithTx.
package items

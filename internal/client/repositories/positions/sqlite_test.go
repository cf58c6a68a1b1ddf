package positions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := dbx.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE reading_positions (
  item_id TEXT PRIMARY KEY,
  block_index INTEGER NOT NULL,
  block_offset REAL NOT NULL,
  saved_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSaveGet_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Save(ctx, &models.Position{ItemID: "X", BlockIndex: 3, BlockOffset: 12, SavedAt: at}))

	got, err := r.Get(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 3, got.BlockIndex)
	assert.Equal(t, 12.0, got.BlockOffset)
	assert.True(t, at.Equal(got.SavedAt))
}

func TestSave_OverwritesInPlace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Position{ItemID: "X", BlockIndex: 1, SavedAt: time.Unix(1, 0)}))
	require.NoError(t, r.Save(ctx, &models.Position{ItemID: "X", BlockIndex: 7, BlockOffset: -4.5, SavedAt: time.Unix(2, 0)}))

	got, err := r.Get(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 7, got.BlockIndex)
	assert.Equal(t, -4.5, got.BlockOffset)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reading_positions`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestGetMissingAndDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Get(ctx, "nope")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.Save(ctx, &models.Position{ItemID: "X", SavedAt: time.Now()}))
	require.NoError(t, r.Delete(ctx, "X"))
	require.NoError(t, r.Delete(ctx, "X"))

	_, err = r.Get(ctx, "X")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestErrorsWrapped_WhenDBClosed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorContains(t, r.Save(ctx, &models.Position{ItemID: "X"}), "failed to save position for X")
	_, err := r.Get(ctx, "X")
	require.ErrorContains(t, err, "failed to get position for X")
	require.ErrorContains(t, r.Delete(ctx, "X"), "failed to delete position for X")
}

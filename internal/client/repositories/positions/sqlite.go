package positions

import (
	"context"
	"fmt"
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

func (r *SQLiteRepository) Save(ctx context.Context, p *models.Position) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reading_positions (item_id, block_index, block_offset, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			block_index = excluded.block_index,
			block_offset = excluded.block_offset,
			saved_at = excluded.saved_at
	`, p.ItemID, p.BlockIndex, p.BlockOffset, p.SavedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save position for %s: %w", p.ItemID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, itemID string) (*models.Position, error) {
	var (
		p       = models.Position{ItemID: itemID}
		savedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT block_index, block_offset, saved_at FROM reading_positions WHERE item_id = ?`, itemID).
		Scan(&p.BlockIndex, &p.BlockOffset, &savedAt)
	if dbx.IsNoRows(err) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position for %s: %w", itemID, err)
	}
	p.SavedAt = time.Unix(0, savedAt).UTC()
	return &p, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, itemID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reading_positions WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete position for %s: %w", itemID, err)
	}
	return nil
}

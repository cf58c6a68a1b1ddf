package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/dbx"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
	"github.com/dmitrijs2005/readkeeper/internal/metrics"
	"github.com/dmitrijs2005/readkeeper/internal/validation"
)

// LocalStore is the durable store of retained items and owner summaries.
// Every method runs in its own transaction; failures other than a missing
// record are returned as *common.StorageError.
type LocalStore struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	log logging.Logger
	now func() time.Time
}

func NewLocalStore(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger) *LocalStore {
	if log == nil {
		log = logging.NewNop()
	}
	return &LocalStore{db: db, rm: rm, log: log.With("component", "store"), now: time.Now}
}

// WithClock replaces the clock used to stamp DownloadedAt.
func (s *LocalStore) WithClock(now func() time.Time) *LocalStore {
	s.now = now
	return s
}

func (s *LocalStore) run(ctx context.Context, op string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	err := dbx.WithTx(ctx, s.db, fn)
	if err == nil || errors.Is(err, common.ErrNotFound) {
		return err
	}
	metrics.StoreFailures.WithLabelValues(op).Inc()
	s.log.Warn(ctx, "store operation failed", "op", op, "error", err)
	return common.NewStorageError(op, err)
}

// Put upserts item and stamps DownloadedAt with the store clock. The stamp
// is written back to item.
func (s *LocalStore) Put(ctx context.Context, item *models.Item) error {
	if err := validation.Struct(item); err != nil {
		return err
	}
	item.DownloadedAt = s.now().UTC()

	return s.run(ctx, "put", func(ctx context.Context, tx dbx.DBTX) error {
		return s.rm.Items(tx).Upsert(ctx, item)
	})
}

// Get returns common.ErrNotFound when the item was never retained.
func (s *LocalStore) Get(ctx context.Context, ownerID, itemID string) (*models.Item, error) {
	var item *models.Item
	err := s.run(ctx, "get", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		item, err = s.rm.Items(tx).Get(ctx, ownerID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *LocalStore) Delete(ctx context.Context, ownerID, itemID string) error {
	return s.run(ctx, "delete", func(ctx context.Context, tx dbx.DBTX) error {
		return s.rm.Items(tx).Delete(ctx, ownerID, itemID)
	})
}

func (s *LocalStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Item, error) {
	var out []models.Item
	err := s.run(ctx, "list_by_owner", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.rm.Items(tx).ListByOwner(ctx, ownerID)
		return err
	})
	return out, err
}

func (s *LocalStore) ListAll(ctx context.Context) ([]models.Item, error) {
	var out []models.Item
	err := s.run(ctx, "list_all", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.rm.Items(tx).ListAll(ctx)
		return err
	})
	return out, err
}

// Clear removes every item and owner in one transaction.
func (s *LocalStore) Clear(ctx context.Context) error {
	return s.run(ctx, "clear", func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Items(tx).Clear(ctx); err != nil {
			return err
		}
		return s.rm.Owners(tx).Clear(ctx)
	})
}

// PutOwners upserts a whole directory atomically.
func (s *LocalStore) PutOwners(ctx context.Context, list []models.OwnerSummary) error {
	for i := range list {
		if err := validation.Struct(&list[i]); err != nil {
			return err
		}
	}
	now := s.now().UTC()

	return s.run(ctx, "put_owners", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Owners(tx)
		for i := range list {
			if err := repo.Upsert(ctx, &list[i], now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LocalStore) ListOwners(ctx context.Context) ([]models.OwnerSummary, error) {
	var out []models.OwnerSummary
	err := s.run(ctx, "list_owners", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.rm.Owners(tx).List(ctx)
		return err
	})
	return out, err
}

// Stats counts retained items. A storage failure degrades to zero.
func (s *LocalStore) Stats(ctx context.Context) models.OwnerStats {
	var n int
	err := s.run(ctx, "stats", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = s.rm.Items(tx).Count(ctx)
		return err
	})
	if err != nil {
		return models.OwnerStats{}
	}
	return models.OwnerStats{Count: n}
}

// SetRead updates the read flag of a retained item. It reports false when
// the item is not retained.
func (s *LocalStore) SetRead(ctx context.Context, ownerID, itemID string, isRead bool) (bool, error) {
	var found bool
	err := s.run(ctx, "set_read", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		found, err = s.rm.Items(tx).SetRead(ctx, ownerID, itemID, isRead)
		return err
	})
	return found, err
}

// Package repomanager vends the SQLite repositories of the reader client,
// each bound to a caller-supplied dbx.DBTX so services can open a
// transaction and obtain transactional repositories from it.
package repomanager

import (
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/cachestore"
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/items"
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/owners"
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/positions"
	"github.com/dmitrijs2005/readkeeper/internal/dbx"
)

type RepositoryManager interface {
	Items(db dbx.DBTX) items.Repository
	Owners(db dbx.DBTX) owners.Repository
	Metadata(db dbx.DBTX) metadata.Repository
	Positions(db dbx.DBTX) positions.Repository
	Caches(db dbx.DBTX) cachestore.Repository
}

// SQLiteRepositoryManager returns the SQLite implementations.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Items(db dbx.DBTX) items.Repository {
	return items.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Owners(db dbx.DBTX) owners.Repository {
	return owners.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Positions(db dbx.DBTX) positions.Repository {
	return positions.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Caches(db dbx.DBTX) cachestore.Repository {
	return cachestore.NewSQLiteRepository(db)
}

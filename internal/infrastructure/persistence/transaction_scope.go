package persistence

import (
	"context"

	"github.com/farmadist/backend/internal/application/uow"
	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Catalog returns the catalog lookup scoped to the current transaction.
func (r *gormTransactionalRepositories) Catalog() catalog.Catalog {
	return NewGormCatalogRepository(r.tx)
}

// Stock returns the stock repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Stock() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

// SupplyOrders returns the supply order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SupplyOrders() trade.SupplyOrderRepository {
	return NewGormSupplyOrderRepository(r.tx)
}

// Sales returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements Repositories
var _ uow.Repositories = (*gormTransactionalRepositories)(nil)

// Package uow defines the unit of work that groups repository calls into one
// database transaction.
package uow

import (
	"context"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/trade"
)

// TransactionScope runs a function inside a database transaction.
// If the function returns an error the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository bound to the current transaction.
// Reads made through Catalog see the writes made through Stock.
type Repositories interface {
	Catalog() catalog.Catalog
	Stock() inventory.StockRepository
	SupplyOrders() trade.SupplyOrderRepository
	Sales() trade.SaleRepository
}

// NoOpTransactionScope hands out fixed repositories without a transaction.
// Used by unit tests and by callers that only read.
type NoOpTransactionScope struct {
	catalog      catalog.Catalog
	stock        inventory.StockRepository
	supplyOrders trade.SupplyOrderRepository
	sales        trade.SaleRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	catalogRepo catalog.Catalog,
	stockRepo inventory.StockRepository,
	supplyOrderRepo trade.SupplyOrderRepository,
	saleRepo trade.SaleRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		catalog:      catalogRepo,
		stock:        stockRepo,
		supplyOrders: supplyOrderRepo,
		sales:        saleRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Catalog returns the catalog lookup.
func (s *NoOpTransactionScope) Catalog() catalog.Catalog { return s.catalog }

// Stock returns the stock repository.
func (s *NoOpTransactionScope) Stock() inventory.StockRepository { return s.stock }

// SupplyOrders returns the supply order repository.
func (s *NoOpTransactionScope) SupplyOrders() trade.SupplyOrderRepository { return s.supplyOrders }

// Sales returns the sale repository.
func (s *NoOpTransactionScope) Sales() trade.SaleRepository { return s.sales }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)

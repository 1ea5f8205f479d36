package trade

import (
	"context"

	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock implementation of catalog.Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalog) GetSupplier(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Supplier), args.Error(1)
}

func (m *MockCatalog) GetClient(ctx context.Context, id uuid.UUID) (*catalog.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Client), args.Error(1)
}

// MockStockRepository is a mock implementation of inventory.StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Lock(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockStockRepository) Increase(ctx context.Context, productID uuid.UUID, qty int64) (*inventory.StockLevel, error) {
	args := m.Called(ctx, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

func (m *MockStockRepository) Decrease(ctx context.Context, productID uuid.UUID, qty int64) (*inventory.StockLevel, error) {
	args := m.Called(ctx, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockLevel), args.Error(1)
}

// MockSupplyOrderRepository is a mock implementation of trade.SupplyOrderRepository
type MockSupplyOrderRepository struct {
	mock.Mock
}

func (m *MockSupplyOrderRepository) Create(ctx context.Context, order *trade.SupplyOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSupplyOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SupplyOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SupplyOrder), args.Error(1)
}

func (m *MockSupplyOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SupplyOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SupplyOrder), args.Error(1)
}

func (m *MockSupplyOrderRepository) UpdateStatus(ctx context.Context, order *trade.SupplyOrder, from trade.SupplyOrderStatus) error {
	args := m.Called(ctx, order, from)
	return args.Error(0)
}

func (m *MockSupplyOrderRepository) List(ctx context.Context, filter trade.SupplyOrderFilter) ([]trade.SupplyOrder, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]trade.SupplyOrder), args.Get(1).(int64), args.Error(2)
}

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) List(ctx context.Context, filter trade.SaleFilter) ([]trade.Sale, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]trade.Sale), args.Get(1).(int64), args.Error(2)
}

// MockAuditSink is a mock implementation of audit.Sink
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Record(ctx context.Context, event audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

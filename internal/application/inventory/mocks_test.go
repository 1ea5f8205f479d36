package inventory

import (
	"context"
	"time"

	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/inventory"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

// MockProductQuery is a mock implementation of catalog.ProductQuery
type MockProductQuery struct {
	mock.Mock
}

func (m *MockProductQuery) FindBelowStock(ctx context.Context, threshold int64, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, threshold, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductQuery) FindExpiringBefore(ctx context.Context, before time.Time, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, before, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
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

package trade

import (
	"context"
	"time"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplyOrderFilter narrows supply order listings
type SupplyOrderFilter struct {
	shared.Filter
	Status     SupplyOrderStatus
	SupplierID *uuid.UUID
}

// SupplyOrderRepository persists supply orders and their lines
type SupplyOrderRepository interface {
	// Create inserts the header and every line
	Create(ctx context.Context, order *SupplyOrder) error
	// FindByID loads the header and its lines
	FindByID(ctx context.Context, id uuid.UUID) (*SupplyOrder, error)
	// FindByIDForUpdate is FindByID holding a row lock on the header
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SupplyOrder, error)
	// UpdateStatus persists a transition only if the stored status still equals from.
	// Returns shared.ErrConcurrencyConflict when another writer got there first.
	UpdateStatus(ctx context.Context, order *SupplyOrder, from SupplyOrderStatus) error
	// List returns headers with their lines
	List(ctx context.Context, filter SupplyOrderFilter) ([]SupplyOrder, int64, error)
}

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	ClientID   *uuid.UUID
	OperatorID string
	From       *time.Time
	To         *time.Time
}

// SaleRepository persists sales and their lines. Sales are never updated.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]Sale, int64, error)
}

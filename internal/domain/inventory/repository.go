package inventory

import (
	"context"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// StockRepository is the only writer of the products.stock column.
//
// Implementations must run each mutation as a single guarded read-modify-write
// inside the caller's transaction. Decrease must never leave stock negative.
type StockRepository interface {
	// Lock loads the product and holds a row lock until the transaction ends
	Lock(ctx context.Context, productID uuid.UUID) (*catalog.Product, error)

	// Increase adds qty units. Returns *shared.NotFoundError for unknown products.
	Increase(ctx context.Context, productID uuid.UUID, qty int64) (*StockLevel, error)

	// Decrease removes qty units. Returns *shared.NotFoundError for unknown
	// products and *shared.InsufficientStockError, with stock untouched, when
	// fewer than qty units are on hand.
	Decrease(ctx context.Context, productID uuid.UUID, qty int64) (*StockLevel, error)
}
